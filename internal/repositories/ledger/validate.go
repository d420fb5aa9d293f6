package ledger

import (
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
)

func validateKey(category, name string) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("category", category, vb)
	errors.ValidateRequired("name", name, vb)
	return vb.Build()
}

func validateEntry(entry *Entry) error {
	if entry == nil {
		return errors.InvalidArgument("entry is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("category", entry.Category, vb)
	errors.ValidateRequired("name", entry.Name, vb)
	errors.ValidateRequired("hash", entry.Hash, vb)
	return vb.Build()
}
