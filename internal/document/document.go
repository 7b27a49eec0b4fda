package document

// Document is a single source document submitted for transformation.
type Document struct {
	ID          string
	Type        string // document type, matches a schema registry entry
	RecordID    string // owning record in the storage service
	Filename    string
	ContentType string
	Data        []byte
	Mapping     *Mapping // parsed key/value view, populated by a parser
}
