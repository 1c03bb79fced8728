package vectorstore

// Metadata keys attached to every indexed chunk.
const (
	MetaSource       = "source"
	MetaTopic        = "topic"
	MetaDocumentType = "document_type"
	MetaPageNumber   = "page_number"
	MetaChunkIndex   = "chunk_index"
	MetaTitle        = "title"
)

// Document type metadata values.
const (
	DocTypeLectureNote  = "lecture_note"
	DocTypeProblemSheet = "problem_sheet"
)

// Document represents a content chunk to be stored in the vector index.
type Document struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Content is the raw chunk text.
	Content string

	// Metadata carries the chunk's source, topic and document type.
	// See the Meta* key constants.
	Metadata map[string]string
}

// SearchResult represents one similarity search hit.
type SearchResult struct {
	// ID is the chunk identifier.
	ID string

	// Content is the chunk text.
	Content string

	// Distance is the cosine-style distance in [0,1]; lower = more similar.
	Distance float32

	// Metadata contains the chunk metadata.
	Metadata map[string]string
}
