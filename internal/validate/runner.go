package validate

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"stimlint/internal/config"
	"stimlint/internal/descriptor"
	"stimlint/internal/erb"
	"stimlint/internal/parser"
	"stimlint/internal/rubyast"
	"stimlint/internal/view"
)

// Runner orchestrates one validation run. The descriptor map and the partial
// reference map are built once and treated as immutable for the remainder of
// the run; each validator pass loads view documents fresh.
type Runner struct {
	Config      *config.Config
	Controllers descriptor.Map

	refs     *view.PartialRefs
	refCache *parser.Cache
}

// NewRunner loads the controller descriptors (hard failure when the
// extractor output is unavailable) and builds the partial reference map.
func NewRunner(ctx context.Context, cfg *config.Config) (*Runner, error) {
	var controllers descriptor.Map
	var err error
	if cfg.DescriptorFile != "" {
		controllers, err = descriptor.LoadFile(cfg.DescriptorFile)
	} else {
		controllers, err = descriptor.Extract(ctx, cfg.ExtractorCmd, cfg.ControllersDir)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("descriptors.loaded", "controllers", len(controllers))

	docs, err := view.LoadAll(cfg.ViewsDir)
	if err != nil {
		return nil, fmt.Errorf("partial refs: %w", err)
	}
	refCache := parser.NewCache()
	refs := view.BuildPartialRefs(docs, refCache)
	slog.Info("partials.mapped", "partials", len(refs.Parents))

	return &Runner{
		Config:      cfg,
		Controllers: controllers,
		refs:        refs,
		refCache:    refCache,
	}, nil
}

// Close releases run-level parser state.
func (r *Runner) Close() {
	if r.refCache != nil {
		r.refCache.Close()
	}
}

// pass is one independent validator.
type pass struct {
	name string
	run  func() ([]Finding, error)
}

func (r *Runner) passes() []pass {
	return []pass{
		{"registrations", r.ValidateRegistrations},
		{"targets", r.ValidateTargets},
		{"actions", r.ValidateActions},
		{"values", r.ValidateValues},
		{"outlets", r.ValidateOutlets},
		{"selectors", r.ValidateSelectors},
		{"broadcasts", r.ValidateBroadcasts},
		{"colors", r.ValidateColorClasses},
		{"architecture", r.ValidateArchitecture},
	}
}

// Run executes every validator. Validators share no mutable state, so they
// run concurrently; results are concatenated in a fixed order.
func (r *Runner) Run(ctx context.Context) ([]Finding, error) {
	passes := r.passes()
	results := make([][]Finding, len(passes))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, p := range passes {
		g.Go(func() error {
			t := time.Now()
			fs, err := p.run()
			if err != nil {
				return fmt.Errorf("%s: %w", p.name, err)
			}
			slog.Info("pass.done", "pass", p.name, "findings", len(fs), "elapsed", time.Since(t))
			results[i] = fs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Finding
	for _, fs := range results {
		all = append(all, fs...)
	}
	return all, nil
}

// RunOne executes a single named validator.
func (r *Runner) RunOne(name string) ([]Finding, error) {
	for _, p := range r.passes() {
		if p.name == name {
			return p.run()
		}
	}
	return nil, fmt.Errorf("unknown validator %q", name)
}

// ValidatorNames lists the validators in run order.
func (r *Runner) ValidatorNames() []string {
	var names []string
	for _, p := range r.passes() {
		names = append(names, p.name)
	}
	return names
}

// declaredControllers collects every controller name attached in a document,
// from literal data-controller attributes and from fragments. Sorted and
// deduplicated.
func declaredControllers(doc *view.Document, cache *parser.Cache) []string {
	seen := map[string]bool{}

	doc.Doc.Find("[data-controller]").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("data-controller"); ok {
			for _, name := range strings.Fields(v) {
				seen[name] = true
			}
		}
	})

	for _, frag := range doc.Fragments {
		code, ok := erb.Preprocess(frag.Code)
		if !ok {
			continue
		}
		tree, source, err := cache.Parse(code)
		if err != nil || tree == nil {
			continue
		}
		for _, name := range rubyast.ControllerNames(tree.RootNode(), source) {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(docs map[string]*view.Document) []string {
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
