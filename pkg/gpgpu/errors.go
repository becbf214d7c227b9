package gpgpu

import "errors"

var (
	// ErrTextureSize reports requested dimensions exceeding the platform's
	// maximum texture size. Raised before any GL call is issued.
	ErrTextureSize = errors.New("gpgpu: texture dimensions exceed platform maximum")

	// ErrTransfer reports a GL-level failure during texture or buffer
	// operations. The wrapped detail carries the failing call and error
	// code name. Transfers are never retried internally; the caller must
	// recover at the context/texture level.
	ErrTransfer = errors.New("gpgpu: transfer failed")

	// ErrNoAsyncRead reports an asynchronous download attempted without
	// the async-read extension.
	ErrNoAsyncRead = errors.New("gpgpu: async read extension unavailable")
)
