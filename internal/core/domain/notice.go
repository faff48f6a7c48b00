package domain

type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

// Notice is a transient status line shown next to the upload area. It is
// display state only and is never persisted.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}

func InfoNotice(text string) Notice {
	return Notice{Kind: NoticeInfo, Text: text}
}

func ErrorNotice(text string) Notice {
	return Notice{Kind: NoticeError, Text: text}
}
