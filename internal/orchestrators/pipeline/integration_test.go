package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments"
	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments/monster"
	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments/weapon"
	"github.com/KirkDiggler/rpg-statblocks/internal/assets"
	"github.com/KirkDiggler/rpg-statblocks/internal/document"
	"github.com/KirkDiggler/rpg-statblocks/internal/observe"
	"github.com/KirkDiggler/rpg-statblocks/internal/orchestrators/pipeline"
	"github.com/KirkDiggler/rpg-statblocks/internal/repositories/ledger"
	"github.com/KirkDiggler/rpg-statblocks/internal/repositories/output"
	"github.com/KirkDiggler/rpg-statblocks/internal/testutils"
	"github.com/KirkDiggler/rpg-statblocks/internal/testutils/builders"
)

// PipelineIntegrationTestSuite runs real strategies against a temp dir.
type PipelineIntegrationTestSuite struct {
	suite.Suite
	ctx    context.Context
	outDir string
	ledger *ledger.InMemoryRepository
	svc    pipeline.Service
}

func TestPipelineIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PipelineIntegrationTestSuite))
}

func (s *PipelineIntegrationTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.outDir = s.T().TempDir()
	s.ledger = ledger.NewInMemory()

	imageDir := filepath.Join(s.outDir, "images")
	s.Require().NoError(os.MkdirAll(imageDir, 0o755))
	s.Require().NoError(os.WriteFile(filepath.Join(imageDir, testutils.GoblinName+".webp"), nil, 0o600))
	index, err := assets.Open(imageDir)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = index.Close() })

	metrics, err := observe.NewMetrics(noop.NewMeterProvider())
	s.Require().NoError(err)

	s.svc, err = pipeline.NewOrchestrator(&pipeline.Config{
		Categories: map[string]*pipeline.CategoryConfig{
			"weapon":  s.category("weapon", weaponStrategy(s.T()), nil),
			"monster": s.category("monster", monsterStrategy(s.T()), index),
		},
		Ledger:  s.ledger,
		Metrics: metrics,
	})
	s.Require().NoError(err)
}

func weaponStrategy(t *testing.T) *weapon.Strategy {
	t.Helper()
	strategy, err := weapon.New()
	if err != nil {
		t.Fatalf("weapon.New: %v", err)
	}
	return strategy
}

func monsterStrategy(t *testing.T) *monster.Strategy {
	t.Helper()
	strategy, err := monster.New()
	if err != nil {
		t.Fatalf("monster.New: %v", err)
	}
	return strategy
}

func (s *PipelineIntegrationTestSuite) category(name string, strategy adjustments.Strategy, index *assets.Index) *pipeline.CategoryConfig {
	template, err := document.Builtin(name)
	s.Require().NoError(err)

	writer, err := output.NewFile(&output.FileConfig{Dir: filepath.Join(s.outDir, name)})
	s.Require().NoError(err)

	cfg := &pipeline.CategoryConfig{
		Strategy: strategy,
		Template: template,
		Writer:   writer,
	}
	if index != nil {
		cfg.Assets = index
	}
	return cfg
}

func (s *PipelineIntegrationTestSuite) read(category, name string) string {
	data, err := os.ReadFile(filepath.Join(s.outDir, category, name+output.DefaultExt))
	s.Require().NoError(err)
	return string(data)
}

func (s *PipelineIntegrationTestSuite) TestWeaponDocument() {
	doc := builders.NewDocumentBuilder().Wrapped("weapon").Add(testutils.Longsword()).Build()

	out, err := s.svc.Run(s.ctx, &pipeline.RunInput{Category: "weapon", Document: doc})
	s.Require().NoError(err)
	s.Equal(1, out.Summary.Processed)

	content := s.read("weapon", testutils.LongswordName)
	s.Contains(content, "---\ntags: weapon, mundane, non-magical, official-source\nname: Longsword\n")
	s.Contains(content, "```statblock\nlayout: Weapon\nname: Longsword\nweaponCategory: Martial Weapon\n")
	s.Contains(content, "properties: \"[[Versatile]]\"")
	s.NotContains(content, "dmgType")
}

func (s *PipelineIntegrationTestSuite) TestMonsterDocumentWithImage() {
	doc := builders.NewDocumentBuilder().Add(testutils.Goblin()).Build()

	out, err := s.svc.Run(s.ctx, &pipeline.RunInput{Category: "monster", Document: doc})
	s.Require().NoError(err)
	s.Require().Equal(1, out.Summary.Processed, "%+v", out.Summary.Results)
	s.False(out.Summary.Results[0].AssetMissing)

	content := s.read("monster", testutils.GoblinName)
	s.Contains(content, "layout: Monster\nname: Goblin\nsize: Small\n")
	s.Contains(content, "ac: 15 (leather armor, shield)\n")
	s.Contains(content, "image: Goblin.webp\n")
}

func (s *PipelineIntegrationTestSuite) TestSecondRunSkipsUnchangedRecords() {
	doc := builders.NewDocumentBuilder().
		Add(testutils.Longsword(), builders.NewRecordBuilder("Club").WithString("dmg1", "1d4").WithString("dmgType", "B")).
		Build()

	first, err := s.svc.Run(s.ctx, &pipeline.RunInput{Category: "weapon", Document: doc})
	s.Require().NoError(err)
	s.Equal(2, first.Summary.Processed)
	s.Equal(2, s.ledger.Len())

	second, err := s.svc.Run(s.ctx, &pipeline.RunInput{Category: "weapon", Document: doc})
	s.Require().NoError(err)
	s.Equal(0, second.Summary.Processed)
	s.Equal(2, second.Summary.Skipped)

	path := filepath.Join(s.outDir, "weapon", "Club.md")
	s.Require().NoError(os.WriteFile(path, []byte("edited by hand"), 0o600))

	forced, err := s.svc.Run(s.ctx, &pipeline.RunInput{Category: "weapon", Document: doc, Force: true})
	s.Require().NoError(err)
	s.Equal(1, forced.Summary.Processed, "the edited file is rewritten")
	s.Equal(1, forced.Summary.Skipped, "the untouched file is unchanged")
	s.NotEqual("edited by hand", s.read("weapon", "Club"))
}
