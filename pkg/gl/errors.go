package gl

import "fmt"

// Error is a nonzero GetError code captured after a GL call, tagged with
// the operation that produced it.
type Error struct {
	Op   string
	Code Enum
}

func (e *Error) Error() string {
	return fmt.Sprintf("gl: %s: %s", e.Op, ErrorName(e.Code))
}

// CheckError drains the context's error queue and returns the first
// recorded error, or nil. Later codes from the same drain are discarded;
// GL queues at most a handful and the first is the one that names the
// failing call.
func CheckError(c Context, op string) error {
	code := c.GetError()
	if code == NO_ERROR {
		return nil
	}
	for c.GetError() != NO_ERROR {
	}
	return &Error{Op: op, Code: code}
}

// ErrorName returns the symbolic name of a GetError code. Unknown codes
// render as hex so driver-specific values stay diagnosable.
func ErrorName(code Enum) string {
	switch code {
	case NO_ERROR:
		return "NO_ERROR"
	case INVALID_ENUM:
		return "INVALID_ENUM"
	case INVALID_VALUE:
		return "INVALID_VALUE"
	case INVALID_OPERATION:
		return "INVALID_OPERATION"
	case OUT_OF_MEMORY:
		return "OUT_OF_MEMORY"
	case INVALID_FRAMEBUFFER_OPERATION:
		return "INVALID_FRAMEBUFFER_OPERATION"
	case CONTEXT_LOST:
		return "CONTEXT_LOST"
	default:
		return fmt.Sprintf("0x%04X", uint32(code))
	}
}

// EnumName returns the symbolic name of the enums this package declares.
// It exists for log and error messages only; unknown values render as hex.
func EnumName(e Enum) string {
	switch e {
	case TEXTURE_2D:
		return "TEXTURE_2D"
	case RED:
		return "RED"
	case RGBA:
		return "RGBA"
	case LUMINANCE:
		return "LUMINANCE"
	case R16F:
		return "R16F"
	case R32F:
		return "R32F"
	case RGBA16F:
		return "RGBA16F"
	case RGBA32F:
		return "RGBA32F"
	case UNSIGNED_BYTE:
		return "UNSIGNED_BYTE"
	case FLOAT:
		return "FLOAT"
	case HALF_FLOAT:
		return "HALF_FLOAT"
	case HALF_FLOAT_OES:
		return "HALF_FLOAT_OES"
	case FRAMEBUFFER:
		return "FRAMEBUFFER"
	case COLOR_ATTACHMENT0:
		return "COLOR_ATTACHMENT0"
	case FRAMEBUFFER_COMPLETE:
		return "FRAMEBUFFER_COMPLETE"
	case PIXEL_PACK_BUFFER:
		return "PIXEL_PACK_BUFFER"
	case STATIC_DRAW:
		return "STATIC_DRAW"
	case STREAM_READ:
		return "STREAM_READ"
	case MAX_TEXTURE_SIZE:
		return "MAX_TEXTURE_SIZE"
	case NEAREST:
		return "NEAREST"
	case CLAMP_TO_EDGE:
		return "CLAMP_TO_EDGE"
	default:
		return fmt.Sprintf("0x%04X", uint32(e))
	}
}
