package sync

import (
	"carrinho/internal/model"
)

// Reconcile merges a cart's local items with the authoritative server
// rows using last-writer-wins on the client-assigned modification
// timestamp.
//
// For an item present on both sides the newer ClientUpdatedAt wins; on
// a tie the local row is kept, so re-applying our own op is a no-op.
// Rows only the server knows are materialized locally (another device
// added them); rows only we know are kept (our add has not synced yet).
// A server row whose timestamp does not parse cannot participate in the
// comparison and is skipped, keeping whatever we have.
//
// The merged slice preserves local order, with server-only rows
// appended in server order.
func Reconcile(local []model.Item, server []model.ItemRow) []model.Item {
	serverByID := make(map[string]model.ItemRow, len(server))
	for _, row := range server {
		serverByID[row.ID] = row
	}

	merged := make([]model.Item, 0, len(local))
	seen := make(map[string]bool, len(local))
	for _, item := range local {
		seen[item.ID] = true
		row, ok := serverByID[item.ID]
		if !ok {
			merged = append(merged, item)
			continue
		}
		remote, err := model.ItemFromRow(row)
		if err != nil {
			merged = append(merged, item)
			continue
		}
		if remote.ClientUpdatedAt.After(item.ClientUpdatedAt) {
			merged = append(merged, remote)
		} else {
			merged = append(merged, item)
		}
	}

	for _, row := range server {
		if seen[row.ID] {
			continue
		}
		remote, err := model.ItemFromRow(row)
		if err != nil {
			continue
		}
		merged = append(merged, remote)
	}

	return merged
}
