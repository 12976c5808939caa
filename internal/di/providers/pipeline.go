package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookdex/bookdex-server/internal/config"
	"github.com/bookdex/bookdex-server/internal/genre"
	"github.com/bookdex/bookdex-server/internal/indexer"
	"github.com/bookdex/bookdex-server/internal/logger"
	"github.com/bookdex/bookdex-server/internal/topics"
)

// ProvideClassifier provides the genre classifier.
func ProvideClassifier(i do.Injector) (*genre.Classifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	classifier := genre.NewClassifier(cfg.Genre, log.Logger)
	if classifier.Degraded() {
		log.Info("Genre classification running rules-only")
	}

	return classifier, nil
}

// ProvideModeler provides the topic modeler.
func ProvideModeler(i do.Injector) (*topics.Modeler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return topics.New(cfg.Topics, log.Logger), nil
}

// ProvideIndexer provides the indexing orchestrator.
func ProvideIndexer(i do.Injector) (*indexer.Indexer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	classifier := do.MustInvoke[*genre.Classifier](i)
	modeler := do.MustInvoke[*topics.Modeler](i)

	return indexer.New(
		cfg.Indexing,
		storeHandle.Store,
		classifier,
		modeler,
		cfg.Storage.BackupPath,
		cfg.Storage.ModelPath,
		log.Logger,
	), nil
}
