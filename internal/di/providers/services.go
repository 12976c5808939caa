package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookdex/bookdex-server/internal/indexer"
	"github.com/bookdex/bookdex-server/internal/logger"
	"github.com/bookdex/bookdex-server/internal/service"
)

// ProvideLibraryService provides the library query and reindex service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	ix := do.MustInvoke[*indexer.Indexer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(storeHandle.Store, indexHandle.Index, ix, log.Logger), nil
}
