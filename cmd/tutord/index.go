package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fyrsmithlabs/tutord/internal/retriever"
	"github.com/spf13/cobra"
)

// indexCmd adds pre-chunked curriculum content to the vector index
var indexCmd = &cobra.Command{
	Use:   "index <chunks.json>",
	Short: "Index curriculum chunks into the vector store",
	Long: `Index pre-chunked curriculum content from a JSON file.

The file holds an array of chunks:

  [
    {
      "id": "la-w1-c3",
      "title": "Week 1: Vector Spaces",
      "topic": "Linear Algebra",
      "content": "A vector space over a field F is...",
      "document_type": "lecture_note",
      "source_file": "week1.pdf",
      "page_number": 3,
      "chunk_index": 2
    }
  ]

Examples:
  tutord index chunks.json`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

// chunkFile is the on-disk JSON shape for one chunk.
type chunkFile struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Topic        string `json:"topic"`
	Content      string `json:"content"`
	DocumentType string `json:"document_type"`
	SourceFile   string `json:"source_file"`
	PageNumber   int    `json:"page_number"`
	ChunkIndex   int    `json:"chunk_index"`
}

func runIndex(cmd *cobra.Command, args []string) error {
	a, err := setup(true)
	if err != nil {
		return err
	}
	defer a.close()

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading chunks file: %w", err)
	}

	var raw []chunkFile
	if err := json.Unmarshal(content, &raw); err != nil {
		return fmt.Errorf("parsing chunks file: %w", err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("chunks file %s contains no chunks", args[0])
	}

	chunks := make([]retriever.Chunk, len(raw))
	for i, c := range raw {
		chunks[i] = retriever.Chunk{
			ID:           c.ID,
			Title:        c.Title,
			Topic:        c.Topic,
			Content:      c.Content,
			DocumentType: c.DocumentType,
			SourceFile:   c.SourceFile,
			PageNumber:   c.PageNumber,
			ChunkIndex:   c.ChunkIndex,
		}
	}

	ids, err := a.registry.Retriever().IndexChunks(cmd.Context(), chunks)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d chunks\n", len(ids))
	return nil
}
