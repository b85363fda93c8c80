package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// OpenSearchStorage indexes events for search. Event IDs are used as document IDs.
type OpenSearchStorage struct {
	client *opensearch.Client
	index  string
}

func NewOpenSearchStorage(client *opensearch.Client, index string) *OpenSearchStorage {
	return &OpenSearchStorage{client: client, index: index}
}

func (s *OpenSearchStorage) Store(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.Join(ErrEventValidation, err)
	}
	req := opensearchapi.IndexRequest{
		Index:      s.index,
		DocumentID: event.ID,
		Body:       bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, s.client)
	if err != nil {
		return errors.Join(ErrStorageNotAvailable, err)
	}
	return checkResponse(resp)
}

func (s *OpenSearchStorage) StoreBatch(ctx context.Context, events []Event) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range events {
		action := map[string]any{"index": map[string]string{"_index": s.index, "_id": e.ID}}
		if err := enc.Encode(action); err != nil {
			return errors.Join(ErrEventValidation, err)
		}
		if err := enc.Encode(e); err != nil {
			return errors.Join(ErrEventValidation, err)
		}
	}

	req := opensearchapi.BulkRequest{Body: &buf}
	resp, err := req.Do(ctx, s.client)
	if err != nil {
		return errors.Join(ErrStorageNotAvailable, err)
	}
	return checkResponse(resp)
}

func checkResponse(resp *opensearchapi.Response) error {
	defer resp.Body.Close()
	if resp.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Join(ErrStorageNotAvailable, fmt.Errorf("opensearch: %s: %s", resp.Status(), msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
