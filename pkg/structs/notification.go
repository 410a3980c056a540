package structs

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type Notification struct {
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}
