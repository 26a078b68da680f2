package catalog

import (
	"umaharvest-backend/lib/textutil"
	"umaharvest-backend/services/harvester"
)

// IconResolver adapts an Index to the harvester's icon reconciliation
// hook: the icon's image reference becomes the stub identifier and the
// positional expectation becomes the display name hint.
type IconResolver struct {
	Index *Index
}

var _ harvester.IconResolver = IconResolver{}

func (r IconResolver) Resolve(imageRef, hint string) (*harvester.CatalogEntity, bool) {
	return r.Index.Resolve(Stub{
		Id:          textutil.ImageRefId(imageRef),
		DisplayName: hint,
	})
}
