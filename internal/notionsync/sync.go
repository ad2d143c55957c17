// Package notionsync mirrors app transactions and accounts into Notion
// databases. Pages are matched on an id property, so repeated syncs update
// rather than duplicate.
package notionsync

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-copilot/internal/domain"
	"github.com/dvloznov/finance-copilot/internal/logger"
	"github.com/jomei/notionapi"
)

// Result counts what a sync did (or would do, on a dry run).
type Result struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

type record struct {
	key   string
	props notionapi.Properties
}

// SyncTransactions mirrors txs into the transactions database. Pages whose
// Transaction ID matches are updated, the rest are created, and pages for
// transactions no longer in the app are archived. Per-page failures are
// logged and counted; only a failed database query aborts the sync.
func SyncTransactions(ctx context.Context, svc PageStore, dbID string, txs []domain.Transaction, dryRun bool) (Result, error) {
	records := make([]record, 0, len(txs))
	for _, tx := range txs {
		records = append(records, record{key: tx.ID, props: TransactionToNotionProperties(tx, "")})
	}
	res, err := syncRecords(ctx, svc, dbID, PropTransactionID, records, dryRun)
	if err != nil {
		return res, fmt.Errorf("SyncTransactions: %w", err)
	}
	return res, nil
}

// SyncAccounts mirrors accounts into the accounts database, matching on the
// Account ID title.
func SyncAccounts(ctx context.Context, svc PageStore, dbID string, accounts []domain.Account, dryRun bool) (Result, error) {
	records := make([]record, 0, len(accounts))
	for _, acc := range accounts {
		records = append(records, record{key: acc.ID, props: AccountToNotionProperties(acc)})
	}
	res, err := syncRecords(ctx, svc, dbID, PropAccountID, records, dryRun)
	if err != nil {
		return res, fmt.Errorf("SyncAccounts: %w", err)
	}
	return res, nil
}

func syncRecords(ctx context.Context, svc PageStore, dbID, keyProp string, records []record, dryRun bool) (Result, error) {
	log := logger.FromContext(ctx).With().Str("database_id", dbID).Bool("dry_run", dryRun).Logger()
	log.Info().Int("records", len(records)).Msg("Starting Notion sync")

	pages, err := allPages(ctx, svc, dbID)
	if err != nil {
		return Result{}, err
	}

	existing := make(map[string]string, len(pages))
	for _, page := range pages {
		if key := plainText(page.Properties[keyProp]); key != "" {
			existing[key] = string(page.ID)
		}
	}

	var res Result
	wanted := make(map[string]bool, len(records))
	for _, r := range records {
		wanted[r.key] = true
		pageID, found := existing[r.key]

		if dryRun {
			if found {
				res.Updated++
			} else {
				res.Created++
			}
			continue
		}

		if found {
			if err := svc.UpdatePage(ctx, pageID, r.props); err != nil {
				log.Warn().Err(err).Str("key", r.key).Str("page_id", pageID).Msg("Failed to update Notion page")
				res.Failed++
				continue
			}
			res.Updated++
			continue
		}

		newID, err := svc.CreatePage(ctx, dbID, r.props)
		if err != nil {
			log.Warn().Err(err).Str("key", r.key).Msg("Failed to create Notion page")
			res.Failed++
			continue
		}
		log.Debug().Str("key", r.key).Str("page_id", string(newID)).Msg("Created Notion page")
		res.Created++
	}

	for key, pageID := range existing {
		if wanted[key] {
			continue
		}
		if dryRun {
			res.Deleted++
			continue
		}
		if err := svc.ArchivePage(ctx, pageID); err != nil {
			log.Warn().Err(err).Str("key", key).Str("page_id", pageID).Msg("Failed to archive stale Notion page")
			res.Failed++
			continue
		}
		res.Deleted++
	}

	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("deleted", res.Deleted).
		Int("failed", res.Failed).
		Msg("Notion sync completed")
	return res, nil
}

// plainText reads the first text fragment of a title or rich text property.
func plainText(prop notionapi.Property) string {
	var texts []notionapi.RichText
	switch p := prop.(type) {
	case *notionapi.RichTextProperty:
		texts = p.RichText
	case notionapi.RichTextProperty:
		texts = p.RichText
	case *notionapi.TitleProperty:
		texts = p.Title
	case notionapi.TitleProperty:
		texts = p.Title
	}
	if len(texts) == 0 {
		return ""
	}
	if texts[0].PlainText != "" {
		return texts[0].PlainText
	}
	if texts[0].Text != nil {
		return texts[0].Text.Content
	}
	return ""
}
