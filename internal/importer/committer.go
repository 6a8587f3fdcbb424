package importer

import (
	"strings"
	"time"

	"github.com/mbuchner/linkhaven/internal/logger"
	"github.com/mbuchner/linkhaven/internal/model"
	"github.com/mbuchner/linkhaven/internal/store"
)

const defaultBatchSize = 10

// Committer feeds parsed records into the store in small batches so the UI
// and the remote dispatch queue stay responsive during large imports.
type Committer struct {
	store     *store.Store
	batchSize int
	pause     time.Duration
	log       logger.Logger
}

// NewCommitter creates a committer. pause is the delay between batches; zero
// disables it.
func NewCommitter(st *store.Store, pause time.Duration, log logger.Logger) *Committer {
	if log == nil {
		log = logger.Nop()
	}
	return &Committer{
		store:     st,
		batchSize: defaultBatchSize,
		pause:     pause,
		log:       log,
	}
}

// CommitOptions tunes a single commit run.
type CommitOptions struct {
	// SkipDuplicates drops records whose normalized URL already exists in
	// the store or earlier in the same run.
	SkipDuplicates bool
	// Progress, when set, is called with a 0-100 percentage after each batch.
	Progress func(percent int)
}

// Summary is the result of one commit run.
type Summary struct {
	Total    int
	Imported int
	Skipped  int
	Failed   int
}

// Commit adds the records to the store through the normal optimistic action
// surface. The deepest folder name of each record maps to a collection,
// matched case-insensitively against existing ones and created on first use;
// records without a folder land in "unsorted".
func (c *Committer) Commit(records []Record, opts CommitOptions) Summary {
	summary := Summary{Total: len(records)}
	if len(records) == 0 {
		return summary
	}

	seen := c.knownURLs(opts.SkipDuplicates)
	collections := c.collectionIndex()

	for start := 0; start < len(records); start += c.batchSize {
		end := start + c.batchSize
		if end > len(records) {
			end = len(records)
		}

		for _, rec := range records[start:end] {
			key := NormalizeURL(rec.URL)
			if opts.SkipDuplicates {
				if seen[key] {
					summary.Skipped++
					continue
				}
			}

			params := model.NewBookmarkParams{
				URL:          rec.URL,
				Title:        rec.Title,
				CollectionID: c.collectionFor(rec.FolderPath, collections),
			}
			if rec.CreatedAt != nil {
				params.CreatedAt = *rec.CreatedAt
			}

			created, _ := c.store.AddBookmark(params)
			if created.ID == "" {
				summary.Failed++
				c.log.Warn("import record rejected", logger.String("url", rec.URL))
				continue
			}

			summary.Imported++
			if opts.SkipDuplicates {
				seen[key] = true
			}
		}

		if opts.Progress != nil {
			opts.Progress(end * 100 / len(records))
		}
		if c.pause > 0 && end < len(records) {
			time.Sleep(c.pause)
		}
	}

	c.log.Info("import finished",
		logger.Int("imported", summary.Imported),
		logger.Int("skipped", summary.Skipped),
		logger.Int("failed", summary.Failed))
	return summary
}

// knownURLs builds the duplicate-detection set from the current store state.
func (c *Committer) knownURLs(enabled bool) map[string]bool {
	if !enabled {
		return nil
	}
	seen := make(map[string]bool)
	for _, b := range c.store.Bookmarks() {
		seen[NormalizeURL(b.URL)] = true
	}
	return seen
}

// collectionIndex maps lowercased collection names to IDs, system
// collections excluded so a folder named "Unsorted" gets its own bucket.
func (c *Committer) collectionIndex() map[string]string {
	index := make(map[string]string)
	for _, coll := range c.store.Collections() {
		if coll.IsSystem {
			continue
		}
		index[strings.ToLower(coll.Name)] = coll.ID
	}
	return index
}

// collectionFor resolves a record's folder path to a collection ID. Only the
// deepest folder name is used; the export's hierarchy is flattened.
func (c *Committer) collectionFor(folderPath string, index map[string]string) string {
	if folderPath == "" {
		return model.CollectionUnsorted
	}

	parts := strings.Split(folderPath, "/")
	leaf := strings.TrimSpace(parts[len(parts)-1])
	if leaf == "" {
		return model.CollectionUnsorted
	}

	if id, ok := index[strings.ToLower(leaf)]; ok {
		return id
	}

	coll, _ := c.store.AddCollection(model.NewCollectionParams{Name: leaf})
	if coll.ID == "" {
		return model.CollectionUnsorted
	}
	index[strings.ToLower(leaf)] = coll.ID
	return coll.ID
}
