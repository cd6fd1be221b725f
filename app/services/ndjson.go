package services

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/listing-parser/app/models"
)

// WriteNDJSON encodes one result per line until results is closed. Writers
// implementing http.Flusher are flushed after every line.
func WriteNDJSON(w io.Writer, results <-chan *models.ListingResult) error {
	enc := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)
	for r := range results {
		if err := enc.Encode(r); err != nil {
			// drain so the producer can exit
			for range results {
			}
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	return nil
}
