package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
)

// queryPageSize is the Notion maximum page size for database queries.
const queryPageSize = 100

// PageStore is the slice of Notion the sync needs: read a database one
// cursor page at a time and create, edit or archive its pages.
type PageStore interface {
	// QueryPages returns one batch of pages and the cursor of the next
	// batch, or "" after the last one.
	QueryPages(ctx context.Context, databaseID string, cursor notionapi.Cursor) ([]notionapi.Page, notionapi.Cursor, error)
	CreatePage(ctx context.Context, databaseID string, props notionapi.Properties) (notionapi.ObjectID, error)
	UpdatePage(ctx context.Context, pageID string, props notionapi.Properties) error
	ArchivePage(ctx context.Context, pageID string) error
}

// Client is a PageStore backed by the Notion API.
type Client struct {
	api *notionapi.Client
}

// NewClient authenticates with an internal integration token.
func NewClient(token string) *Client {
	return &Client{api: notionapi.NewClient(notionapi.Token(token))}
}

func (c *Client) QueryPages(ctx context.Context, databaseID string, cursor notionapi.Cursor) ([]notionapi.Page, notionapi.Cursor, error) {
	resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(databaseID), &notionapi.DatabaseQueryRequest{
		PageSize:    queryPageSize,
		StartCursor: cursor,
	})
	if err != nil {
		return nil, "", fmt.Errorf("query database %s: %w", databaseID, err)
	}
	if !resp.HasMore {
		return resp.Results, "", nil
	}
	return resp.Results, resp.NextCursor, nil
}

func (c *Client) CreatePage(ctx context.Context, databaseID string, props notionapi.Properties) (notionapi.ObjectID, error) {
	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: notionapi.DatabaseID(databaseID)},
		Properties: props,
	})
	if err != nil {
		return "", fmt.Errorf("create page in %s: %w", databaseID, err)
	}
	return page.ID, nil
}

func (c *Client) UpdatePage(ctx context.Context, pageID string, props notionapi.Properties) error {
	if _, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Properties: props}); err != nil {
		return fmt.Errorf("update page %s: %w", pageID, err)
	}
	return nil
}

// ArchivePage moves a page to the trash. Notion has no hard delete.
func (c *Client) ArchivePage(ctx context.Context, pageID string) error {
	if _, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Archived: true}); err != nil {
		return fmt.Errorf("archive page %s: %w", pageID, err)
	}
	return nil
}

// allPages follows the cursor until the database is exhausted.
func allPages(ctx context.Context, store PageStore, databaseID string) ([]notionapi.Page, error) {
	var (
		all    []notionapi.Page
		cursor notionapi.Cursor
	)
	for {
		batch, next, err := store.QueryPages(ctx, databaseID, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

var _ PageStore = (*Client)(nil)
