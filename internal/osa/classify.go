package osa

import "github.com/roach88/notes-sidecar/internal/sidecar"

// Channel identifies which automation path produced a native error.
type Channel int

const (
	// ChannelQuery is the attribute-query channel (reads and attribute assignment).
	ChannelQuery Channel = iota

	// ChannelScript is the scripted command channel (create, delete, attach, export).
	ChannelScript
)

func (c Channel) String() string {
	switch c {
	case ChannelQuery:
		return "query"
	case ChannelScript:
		return "script"
	default:
		return "unknown"
	}
}

// Apple Event and OSA error numbers the sidecar distinguishes.
const (
	errAEEventNotPermitted = -1743
	errAENoSuchObject      = -1728
	errAEIllegalIndex      = -1719
	errAECoercionFail      = -1700
	errAEWrongDataType     = -1703
	errOSASyntaxError      = -2740
	errOSASyntaxTypeError  = -2741
)

// Classify maps a native error number from the given channel to a taxonomy code.
// Unmapped numbers are INTERNAL.
func Classify(channel Channel, number int) sidecar.Code {
	switch number {
	case errAEEventNotPermitted:
		return sidecar.CodeNotAuthorized
	case errAENoSuchObject, errAEIllegalIndex:
		return sidecar.CodeNotFound
	}

	if channel == ChannelScript {
		switch number {
		case errAECoercionFail, errAEWrongDataType, errOSASyntaxError, errOSASyntaxTypeError:
			return sidecar.CodeInvalidArguments
		}
	}

	return sidecar.CodeInternal
}
