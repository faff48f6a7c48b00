package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docassist/docchat/internal/core/domain"
	"github.com/docassist/docchat/internal/infrastructure/resilience"
)

// Client talks to the remote retrieval/answer service. Reads (list) are
// retried through the executor; user-initiated mutations are sent once and
// surfaced as one-shot failures, with the circuit breaker still recording
// outcomes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	exec       *resilience.Executor
}

func New(baseURL string, timeout time.Duration, exec *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		exec:       exec,
	}
}

type documentPayload struct {
	ID       json.Number `json:"id"`
	Filename string      `json:"filename"`
	Status   string      `json:"status"`
}

func (c *Client) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	var payload []documentPayload
	err := c.exec.Execute(ctx, "list_documents", func(callCtx context.Context) error {
		payload = payload[:0]
		return c.getJSON(callCtx, "/api/documents", &payload, "list_documents")
	}, classifyServiceError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded("list_documents", err)
	}

	docs := make([]domain.Document, 0, len(payload))
	for _, p := range payload {
		docs = append(docs, domain.Document{
			ID:       p.ID.String(),
			Filename: p.Filename,
			Status:   domain.DocumentStatus(p.Status),
		})
	}
	return docs, nil
}

// UploadDocument streams the file as one multipart submission. The body
// reader cannot be replayed, so the call is never retried.
func (c *Client) UploadDocument(ctx context.Context, filename string, body io.Reader) error {
	err := c.postMultipart(ctx, "/api/upload", filename, body, "upload_document")
	return wrapTemporaryIfNeeded("upload_document", err)
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	err := c.exec.Execute(ctx, "delete_document", func(callCtx context.Context) error {
		return c.doJSON(callCtx, http.MethodDelete, "/api/documents/"+id, nil, nil, "delete_document")
	}, classifyOneShot)
	return wrapTemporaryIfNeeded("delete_document", err)
}

func (c *Client) AnswerQuery(ctx context.Context, question string) (domain.Answer, error) {
	request := map[string]string{"query": question}

	var answer domain.Answer
	err := c.exec.Execute(ctx, "answer_query", func(callCtx context.Context) error {
		answer = domain.Answer{}
		return c.doJSON(callCtx, http.MethodPost, "/api/query", request, &answer, "answer_query")
	}, classifyOneShot)
	if err != nil {
		return domain.Answer{}, wrapTemporaryIfNeeded("answer_query", err)
	}
	if answer.Sources == nil {
		answer.Sources = []string{}
	}
	return answer, nil
}

// Detail extracts the service-reported failure message from an error chain,
// falling back to the plain error text. Used when presenting failures to the
// user.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.Detail != "" {
		return statusErr.Detail
	}
	return err.Error()
}
