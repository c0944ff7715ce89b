package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/basher83/zammad-mcp/internal/models"
	"github.com/basher83/zammad-mcp/internal/output"
	"github.com/basher83/zammad-mcp/internal/version"
)

// ListAttachments returns attachment metadata for one article. The
// article list endpoint already includes attachments, so this filters
// one article out of the ticket's set.
func (c *Client) ListAttachments(ctx context.Context, ticketID, articleID int) ([]models.Attachment, error) {
	articles, err := c.ListArticles(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		if articles[i].ID == articleID {
			return articles[i].Attachments, nil
		}
	}
	return nil, output.ErrNotFound("article", strconv.Itoa(articleID))
}

// DownloadAttachment streams one attachment body, refusing payloads
// larger than maxBytes. The size check happens while reading since
// Zammad does not always send Content-Length.
func (c *Client) DownloadAttachment(ctx context.Context, ticketID, articleID, attachmentID, maxBytes int) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, output.ErrTimeout(err)
		}
	}
	path := fmt.Sprintf("%s/ticket_attachment/%d/%d/%d", c.baseURL, ticketID, articleID, attachmentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := classifyStatus(resp.StatusCode, resp.Header, body)
		if oe := output.AsError(err); oe.Code == output.CodeNotFound {
			return nil, output.ErrNotFound("attachment", strconv.Itoa(attachmentID))
		}
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(maxBytes)+1))
	if err != nil {
		return nil, output.ErrUnavailable("reading attachment body failed", err)
	}
	if len(data) > maxBytes {
		return nil, output.ErrValidationf("max_bytes",
			"attachment exceeds the %d byte download limit", maxBytes)
	}
	return data, nil
}

// DeleteAttachment removes one attachment from an article.
func (c *Client) DeleteAttachment(ctx context.Context, ticketID, articleID, attachmentID int) error {
	path := fmt.Sprintf("ticket_attachment/%d/%d/%d", ticketID, articleID, attachmentID)
	_, err := c.Delete(ctx, path)
	if err != nil {
		if oe := output.AsError(err); oe.Code == output.CodeNotFound {
			return output.ErrNotFound("attachment", strconv.Itoa(attachmentID))
		}
	}
	return err
}
