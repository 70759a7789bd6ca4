package notes

import "time"

// Container types of a FolderRecord.
const (
	ContainerAccount = "account"
	ContainerFolder  = "folder"
)

// AccountRecord is one account as listed by ListAccounts. DefaultFolderID is
// null when the default folder cannot be resolved.
type AccountRecord struct {
	AccountID       string  `json:"account_id"`
	Name            string  `json:"name"`
	Upgraded        bool    `json:"upgraded"`
	DefaultFolderID *string `json:"default_folder_id"`
}

// ContainerRef names the parent of a folder: an account for top-level
// folders, otherwise a folder.
type ContainerRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// FolderRecord is one folder as listed by ListFolders.
type FolderRecord struct {
	FolderID  string       `json:"folder_id"`
	Name      string       `json:"name"`
	IsShared  bool         `json:"is_shared"`
	Container ContainerRef `json:"container"`
}

// NoteSummary is one entry of ListNotes. PlaintextExcerpt is null unless an
// excerpt was requested and the note is not password protected.
type NoteSummary struct {
	NoteID              string  `json:"note_id"`
	FolderID            string  `json:"folder_id"`
	Name                string  `json:"name"`
	CreationDate        string  `json:"creation_date"`
	ModificationDate    string  `json:"modification_date"`
	IsPasswordProtected bool    `json:"is_password_protected"`
	IsShared            bool    `json:"is_shared"`
	AttachmentCount     int     `json:"attachment_count"`
	PlaintextExcerpt    *string `json:"plaintext_excerpt"`
}

// NoteDetail is a single note. Plaintext, BodyHTML and Attachments are null
// when not requested.
type NoteDetail struct {
	NoteID              string             `json:"note_id"`
	FolderID            string             `json:"folder_id"`
	Name                string             `json:"name"`
	CreationDate        string             `json:"creation_date"`
	ModificationDate    string             `json:"modification_date"`
	IsPasswordProtected bool               `json:"is_password_protected"`
	IsShared            bool               `json:"is_shared"`
	Plaintext           *string            `json:"plaintext"`
	BodyHTML            *string            `json:"body_html"`
	Attachments         []AttachmentRecord `json:"attachments"`
}

// AttachmentRecord describes one attachment. URL is null when the attachment
// has no URL.
type AttachmentRecord struct {
	AttachmentID      string  `json:"attachment_id"`
	NoteID            string  `json:"note_id"`
	Name              string  `json:"name"`
	ContentIdentifier string  `json:"content_identifier"`
	CreationDate      string  `json:"creation_date"`
	ModificationDate  string  `json:"modification_date"`
	URL               *string `json:"url"`
	IsShared          bool    `json:"is_shared"`
}

// FormatDate renders t as RFC 3339 in the local zone. The zero time renders
// as the Unix epoch.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		t = time.Unix(0, 0)
	}
	return t.In(time.Local).Format(time.RFC3339)
}

func attachmentRecord(a Attachment, noteID string) AttachmentRecord {
	rec := AttachmentRecord{
		AttachmentID:      a.ID(),
		NoteID:            noteID,
		Name:              a.Name(),
		ContentIdentifier: a.ContentIdentifier(),
		CreationDate:      FormatDate(a.CreationDate()),
		ModificationDate:  FormatDate(a.ModificationDate()),
		IsShared:          a.Shared(),
	}
	if u := a.URL(); u != "" {
		rec.URL = &u
	}
	return rec
}

func strPtr(s string) *string {
	return &s
}
