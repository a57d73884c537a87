package tracker

import (
	"errors"

	"github.com/sadopc/pathtrack/internal/curriculum"
	"github.com/sadopc/pathtrack/internal/store"
)

type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is a transient, user-visible message.
type Notice struct {
	Kind NoticeKind
	Text string
}

const (
	MsgImported      = "Learning path imported successfully!"
	MsgImportInvalid = "Invalid JSON file. Please check the file format."
	MsgExported      = "Progress exported successfully!"
	MsgReset         = "Progress reset successfully!"
	MsgLoadFailed    = "Failed to load learning path. Please try importing a JSON file."
	MsgStoreCorrupt  = "Saved progress could not be read; starting empty."
)

func Info(text string) Notice    { return Notice{Kind: NoticeInfo, Text: text} }
func Success(text string) Notice { return Notice{Kind: NoticeSuccess, Text: text} }
func Failure(text string) Notice { return Notice{Kind: NoticeError, Text: text} }

// NoticeFor maps a handler error to the message shown to the user.
func NoticeFor(err error) Notice {
	var (
		importErr *ImportParseError
		loadErr   *curriculum.LoadError
		decodeErr *store.StoreDecodeError
	)
	switch {
	case errors.As(err, &importErr):
		return Failure(MsgImportInvalid)
	case errors.As(err, &loadErr):
		return Failure(MsgLoadFailed)
	case errors.As(err, &decodeErr):
		return Failure(MsgStoreCorrupt)
	default:
		return Failure("Error: " + err.Error())
	}
}
