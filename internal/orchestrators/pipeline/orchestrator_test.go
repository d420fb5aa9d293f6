package pipeline_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	adjustmentsmock "github.com/KirkDiggler/rpg-statblocks/internal/adjustments/mock"
	"github.com/KirkDiggler/rpg-statblocks/internal/document"
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/observe"
	"github.com/KirkDiggler/rpg-statblocks/internal/orchestrators/pipeline"
	"github.com/KirkDiggler/rpg-statblocks/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-statblocks/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-statblocks/internal/repositories/ledger"
	ledgermock "github.com/KirkDiggler/rpg-statblocks/internal/repositories/ledger/mock"
	"github.com/KirkDiggler/rpg-statblocks/internal/repositories/output"
	outputmock "github.com/KirkDiggler/rpg-statblocks/internal/repositories/output/mock"
	"github.com/KirkDiggler/rpg-statblocks/internal/testutils/builders"
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testCategory = "weapon"

type PipelineTestSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	strategy *adjustmentsmock.MockStrategy
	writer   *outputmock.MockWriter
	ledger   *ledgermock.MockRepository
	attacher *fakeAttacher
	reader   *sdkmetric.ManualReader
	svc      pipeline.Service

	mu      sync.Mutex
	written map[string]string
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

// fakeAttacher finds images for the names it holds.
type fakeAttacher struct {
	images map[string]bool
}

func (f *fakeAttacher) Attach(rec *tree.Object, name string) bool {
	if !f.images[name] {
		return false
	}
	rec.SetString("image", name+".png")
	return true
}

func (s *PipelineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.strategy = adjustmentsmock.NewMockStrategy(s.ctrl)
	s.writer = outputmock.NewMockWriter(s.ctrl)
	s.ledger = ledgermock.NewMockRepository(s.ctrl)
	s.attacher = &fakeAttacher{images: map[string]bool{}}
	s.written = make(map[string]string)

	s.reader = sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(s.reader))
	s.T().Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	s.Require().NoError(err)

	s.svc, err = pipeline.NewOrchestrator(&pipeline.Config{
		Categories: map[string]*pipeline.CategoryConfig{
			testCategory: {
				Strategy: s.strategy,
				Template: document.Template{Tags: []string{"weapon"}, Layout: "Weapon"},
				Writer:   s.writer,
				Assets:   s.attacher,
			},
		},
		Ledger:      s.ledger,
		Metrics:     metrics,
		Clock:       &clock.Fixed{At: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)},
		IDGenerator: idgen.NewSequential("batch"),
		Workers:     2,
	})
	s.Require().NoError(err)
}

func (s *PipelineTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *PipelineTestSuite) expectPassthrough() {
	s.strategy.EXPECT().PreShape(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.strategy.EXPECT().FlattenForDisplay(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.strategy.EXPECT().TextReplace(gomock.Any(), gomock.Any()).
		DoAndReturn(func(text, _ string) (string, error) { return text, nil }).
		AnyTimes()
}

func (s *PipelineTestSuite) expectWrites() {
	s.writer.EXPECT().Write(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *output.WriteInput) (*output.WriteOutput, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.written[in.Name] = in.Content
			return &output.WriteOutput{Path: "out/" + in.Name + ".md"}, nil
		}).
		AnyTimes()
}

func (s *PipelineTestSuite) expectEmptyLedger() {
	s.ledger.EXPECT().Get(gomock.Any(), gomock.Any()).
		Return(nil, errors.NotFound("no entry")).
		AnyTimes()
	s.ledger.EXPECT().Put(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *ledger.PutInput) (*ledger.PutOutput, error) {
			return &ledger.PutOutput{Entry: in.Entry}, nil
		}).
		AnyTimes()
}

func (s *PipelineTestSuite) run(doc []byte) *pipeline.Summary {
	out, err := s.svc.Run(s.ctx, &pipeline.RunInput{Category: testCategory, Document: doc})
	s.Require().NoError(err)
	s.Require().NotNil(out.Summary)
	return out.Summary
}

func named(names ...string) []byte {
	doc := builders.NewDocumentBuilder()
	for _, name := range names {
		doc.Add(builders.NewRecordBuilder(name))
	}
	return doc.Build()
}

func (s *PipelineTestSuite) TestNewOrchestrator() {
	testCases := []struct {
		name   string
		config *pipeline.Config
		errMsg string
	}{
		{
			name:   "nil config",
			config: nil,
			errMsg: "config cannot be nil",
		},
		{
			name:   "no categories",
			config: &pipeline.Config{},
			errMsg: "Categories: is required",
		},
		{
			name: "missing writer",
			config: &pipeline.Config{Categories: map[string]*pipeline.CategoryConfig{
				testCategory: {Strategy: s.strategy, Template: document.Template{Tags: []string{"a"}, Layout: "A"}},
			}},
			errMsg: "Writer: is required",
		},
		{
			name: "template without layout",
			config: &pipeline.Config{Categories: map[string]*pipeline.CategoryConfig{
				testCategory: {Strategy: s.strategy, Writer: s.writer, Template: document.Template{Tags: []string{"a"}}},
			}},
			errMsg: "layout",
		},
		{
			name: "negative workers",
			config: &pipeline.Config{
				Categories: map[string]*pipeline.CategoryConfig{testCategory: {}},
				Workers:    -1,
			},
			errMsg: "Workers: cannot be negative",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			svc, err := pipeline.NewOrchestrator(tc.config)
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
			s.Contains(err.Error(), tc.errMsg)
			s.Nil(svc)
		})
	}
}

func (s *PipelineTestSuite) TestRunRendersAndWrites() {
	s.expectPassthrough()
	s.expectWrites()
	s.expectEmptyLedger()

	summary := s.run(named("Dagger"))

	s.Equal("batch_1", summary.BatchID)
	s.Equal(testCategory, summary.Category)
	s.Equal(1, summary.Total)
	s.Equal(1, summary.Processed)
	s.Equal(pipeline.StageHandedOff, summary.Results[0].Stage)
	s.Equal("out/Dagger.md", summary.Results[0].OutputPath)
	s.True(summary.Results[0].AssetMissing)
	s.Equal("---\ntags: weapon\nname: Dagger\n---\n\n```statblock\nlayout: Weapon\nname: Dagger\n```\n", s.written["Dagger"])
}

func (s *PipelineTestSuite) TestRunUnwrapsSingleArrayField() {
	s.expectPassthrough()
	s.expectWrites()
	s.expectEmptyLedger()

	bare := s.run(named("Club", "Spear"))
	wrapped := s.run(builders.NewDocumentBuilder().
		Wrapped("weapon").
		Add(builders.NewRecordBuilder("Club"), builders.NewRecordBuilder("Spear")).
		Build())

	s.Equal(bare.Total, wrapped.Total)
	for i := range bare.Results {
		s.Equal(bare.Results[i].Name, wrapped.Results[i].Name)
	}
	s.Equal(2, wrapped.Processed)
}

func (s *PipelineTestSuite) TestRunRejectsBadDocuments() {
	testCases := []struct {
		name   string
		doc    string
		errMsg string
	}{
		{name: "invalid json", doc: `[{"name":`, errMsg: "not valid JSON"},
		{name: "two arrays", doc: `{"a":[],"b":[]}`, errMsg: "exactly one record array, found 2"},
		{name: "no array", doc: `{"a":{}}`, errMsg: "exactly one record array, found 0"},
		{name: "scalar root", doc: `42`, errMsg: "must be an array or an object"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			out, err := s.svc.Run(s.ctx, &pipeline.RunInput{Category: testCategory, Document: []byte(tc.doc)})
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
			s.Contains(err.Error(), tc.errMsg)
			s.Nil(out)
		})
	}
}

func (s *PipelineTestSuite) TestRunUnknownCategory() {
	_, err := s.svc.Run(s.ctx, &pipeline.RunInput{Category: "armor", Document: []byte(`[]`)})

	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *PipelineTestSuite) TestRunNilInput() {
	_, err := s.svc.Run(s.ctx, nil)

	s.True(errors.IsInvalidArgument(err))
}

func (s *PipelineTestSuite) TestNameCollisionLastWins() {
	s.expectPassthrough()
	s.expectEmptyLedger()
	s.writer.EXPECT().Write(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *output.WriteInput) (*output.WriteOutput, error) {
			s.Equal("Goblin", in.Name)
			s.Contains(in.Content, "copy: 2")
			return &output.WriteOutput{Path: "out/Goblin.md"}, nil
		}).
		Times(1)

	doc := builders.NewDocumentBuilder()
	for i := int64(0); i < 3; i++ {
		doc.Add(builders.NewRecordBuilder("Goblin").WithInt("copy", i))
	}
	summary := s.run(doc.Build())

	s.Equal(3, summary.Total)
	s.Equal(1, summary.Processed)
	s.Equal(2, summary.Superseded)
	s.True(summary.Results[0].Superseded)
	s.True(summary.Results[1].Superseded)
	s.False(summary.Results[2].Superseded)
	s.Equal(pipeline.StageTextReplaced, summary.Results[0].Stage)
}

func (s *PipelineTestSuite) TestFailureIsIsolated() {
	s.expectWrites()
	s.expectEmptyLedger()
	s.strategy.EXPECT().PreShape(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ *tree.Object, name string) error {
			if name == "Bad" {
				return errors.ShapeMismatch("expected array").WithMeta("field", "property")
			}
			return nil
		}).
		AnyTimes()
	s.strategy.EXPECT().FlattenForDisplay(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.strategy.EXPECT().TextReplace(gomock.Any(), gomock.Any()).
		DoAndReturn(func(text, _ string) (string, error) { return text, nil }).
		AnyTimes()

	summary := s.run(named("Axe", "Bad", "Bow", "Club"))

	s.Equal(4, summary.Total)
	s.Equal(3, summary.Processed)
	s.Equal(1, summary.Failed)

	bad := summary.Results[1]
	s.Equal("Bad", bad.Name)
	s.Equal(pipeline.StageFailed, bad.Stage)
	s.True(errors.IsShapeMismatch(bad.Err))
	s.Equal(string(pipeline.StagePreShaped), errors.GetMeta(bad.Err)["stage"])
	s.Equal("property", errors.GetMeta(bad.Err)["field"])
	s.NotContains(s.written, "Bad")
}

func (s *PipelineTestSuite) TestTextReplaceFailure() {
	s.expectEmptyLedger()
	s.strategy.EXPECT().PreShape(gomock.Any(), gomock.Any()).Return(nil)
	s.strategy.EXPECT().FlattenForDisplay(gomock.Any(), gomock.Any()).Return(nil)
	s.strategy.EXPECT().TextReplace(gomock.Any(), "Whip").
		Return("", errors.UnknownCodef("unknown attack type %q", "zz"))

	summary := s.run(named("Whip"))

	s.Equal(1, summary.Failed)
	s.True(errors.IsUnknownCode(summary.Results[0].Err))
	s.Equal(string(pipeline.StageTextReplaced), errors.GetMeta(summary.Results[0].Err)["stage"])
}

func (s *PipelineTestSuite) TestPanicIsRecovered() {
	s.expectWrites()
	s.expectEmptyLedger()
	s.strategy.EXPECT().PreShape(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.strategy.EXPECT().FlattenForDisplay(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ *tree.Object, name string) error {
			if name == "Cursed" {
				panic("boom")
			}
			return nil
		}).
		AnyTimes()
	s.strategy.EXPECT().TextReplace(gomock.Any(), gomock.Any()).
		DoAndReturn(func(text, _ string) (string, error) { return text, nil }).
		AnyTimes()

	summary := s.run(named("Cursed", "Plain"))

	s.Equal(1, summary.Processed)
	s.Equal(1, summary.Failed)
	s.True(errors.IsInternal(summary.Results[0].Err))
	s.Contains(summary.Results[0].Err.Error(), "boom")
}

func (s *PipelineTestSuite) TestNonObjectAndUnnamedRecords() {
	s.expectPassthrough()
	s.expectWrites()
	s.expectEmptyLedger()

	doc := builders.NewDocumentBuilder().
		AddValue(tree.String("not a record")).
		Add(builders.NewUnnamedRecordBuilder().WithString("type", "M")).
		Build()
	summary := s.run(doc)

	s.Equal(1, summary.Failed)
	s.Equal("0", summary.Results[0].Name)
	s.True(errors.IsShapeMismatch(summary.Results[0].Err))

	s.Equal(1, summary.Processed)
	s.Equal("1", summary.Results[1].Name)
	s.Contains(s.written, "1")
}

func (s *PipelineTestSuite) TestAssetsAreAttached() {
	s.expectPassthrough()
	s.expectWrites()
	s.expectEmptyLedger()
	s.attacher.images["Owlbear"] = true

	summary := s.run(named("Owlbear"))

	s.False(summary.Results[0].AssetMissing)
	s.Contains(s.written["Owlbear"], "layout: Weapon\nname: Owlbear\nimage: Owlbear.png\n")
	s.NotContains(strings.Split(s.written["Owlbear"], "```statblock")[0], "image:")
}

func hashOf(rec *builders.RecordBuilder) string {
	data, _ := rec.Build().MarshalJSON()
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *PipelineTestSuite) TestLedgerSkipsUnchangedRecords() {
	s.expectPassthrough()
	s.expectWrites()

	hammer := builders.NewRecordBuilder("Hammer").WithString("type", "M")
	s.ledger.EXPECT().Get(gomock.Any(), &ledger.GetInput{Category: testCategory, Name: "Hammer"}).
		Return(&ledger.GetOutput{Entry: &ledger.Entry{Hash: hashOf(hammer), OutputPath: "out/Hammer.md"}}, nil)
	s.ledger.EXPECT().Get(gomock.Any(), &ledger.GetInput{Category: testCategory, Name: "Lance"}).
		Return(&ledger.GetOutput{Entry: &ledger.Entry{Hash: "stale"}}, nil)
	s.ledger.EXPECT().Put(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *ledger.PutInput) (*ledger.PutOutput, error) {
			s.Equal("Lance", in.Entry.Name)
			s.Equal("batch_1", in.Entry.BatchID)
			s.Equal("out/Lance.md", in.Entry.OutputPath)
			return &ledger.PutOutput{Entry: in.Entry}, nil
		})

	summary := s.run(builders.NewDocumentBuilder().Add(hammer, builders.NewRecordBuilder("Lance")).Build())

	s.Equal(1, summary.Skipped)
	s.Equal(1, summary.Processed)
	s.True(summary.Results[0].Skipped)
	s.Equal("out/Hammer.md", summary.Results[0].OutputPath)
	s.Equal(pipeline.StageLoaded, summary.Results[0].Stage)
	s.NotContains(s.written, "Hammer")
}

func (s *PipelineTestSuite) TestForceIgnoresLedger() {
	s.expectPassthrough()
	s.expectWrites()
	s.ledger.EXPECT().Put(gomock.Any(), gomock.Any()).Return(&ledger.PutOutput{}, nil)

	out, err := s.svc.Run(s.ctx, &pipeline.RunInput{
		Category: testCategory,
		Document: named("Hammer"),
		Force:    true,
	})

	s.Require().NoError(err)
	s.Equal(1, out.Summary.Processed)
}

func (s *PipelineTestSuite) TestLedgerOutageDoesNotFailRecords() {
	s.expectPassthrough()
	s.expectWrites()
	s.ledger.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.Unavailable("redis down"))
	s.ledger.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil, errors.Unavailable("redis down"))

	summary := s.run(named("Sling"))

	s.Equal(1, summary.Processed)
	s.Equal(0, summary.Failed)
}

func (s *PipelineTestSuite) TestUnchangedOutputIsSkipped() {
	s.expectPassthrough()
	s.expectEmptyLedger()
	s.writer.EXPECT().Write(gomock.Any(), gomock.Any()).
		Return(&output.WriteOutput{Path: "out/Sickle.md", Unchanged: true}, nil)

	summary := s.run(named("Sickle"))

	s.Equal(1, summary.Skipped)
	s.Equal(pipeline.StageHandedOff, summary.Results[0].Stage)
}

func (s *PipelineTestSuite) TestDryRunIsNotRecorded() {
	s.expectPassthrough()
	s.ledger.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.NotFound("no entry"))
	s.writer.EXPECT().Write(gomock.Any(), gomock.Any()).
		Return(&output.WriteOutput{Path: "out/Trident.md", DryRun: true}, nil)

	summary := s.run(named("Trident"))

	s.Equal(1, summary.Processed)
}

func (s *PipelineTestSuite) TestWriteFailure() {
	s.expectPassthrough()
	s.ledger.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.NotFound("no entry"))
	s.writer.EXPECT().Write(gomock.Any(), gomock.Any()).Return(nil, errors.Internal("disk full"))

	summary := s.run(named("Flail"))

	s.Equal(1, summary.Failed)
	s.Equal(string(pipeline.StageHandedOff), errors.GetMeta(summary.Results[0].Err)["stage"])
}

func (s *PipelineTestSuite) TestCancellationStopsIssuingRecords() {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	s.expectWrites()
	s.expectEmptyLedger()
	s.strategy.EXPECT().PreShape(gomock.Any(), "First").
		DoAndReturn(func(*tree.Object, string) error {
			cancel()
			return nil
		})
	s.strategy.EXPECT().FlattenForDisplay(gomock.Any(), "First").Return(nil)
	s.strategy.EXPECT().TextReplace(gomock.Any(), "First").
		DoAndReturn(func(text, _ string) (string, error) { return text, nil }).
		Times(2)

	out, err := s.svc.Run(ctx, &pipeline.RunInput{
		Category: testCategory,
		Document: named("First", "Second", "Third"),
		Workers:  1,
	})

	s.Require().Error(err)
	s.True(errors.IsCanceled(err))
	s.Require().NotNil(out)
	s.Equal(1, out.Summary.Processed)
	s.Equal(2, out.Summary.Canceled)
	s.True(out.Summary.Results[1].Canceled)
	s.True(out.Summary.Results[2].Canceled)
	s.Contains(s.written, "First")
}

func (s *PipelineTestSuite) TestMetrics() {
	s.expectPassthrough()
	s.expectWrites()
	s.expectEmptyLedger()

	s.run(named("Axe", "Axe", "Mace"))

	var rm metricdata.ResourceMetrics
	s.Require().NoError(s.reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	var runs int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				switch m.Name {
				case observe.RecordsName:
					outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
					counts[outcome.AsString()] += dp.Value
				case observe.RunsName:
					runs += dp.Value
				}
			}
		}
	}

	s.Equal(map[string]int64{observe.OutcomeWritten: 2, observe.OutcomeSuperseded: 1}, counts)
	s.Equal(int64(1), runs)
}

func (s *PipelineTestSuite) TestSanitizeName() {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "Goblin", expected: "Goblin"},
		{input: `Potion of "Healing"`, expected: "Potion of `Healing`"},
		{input: "Arrows/Bolts", expected: "Arrows-Bolts"},
		{input: `a\b:c*d?e<f>g|h`, expected: "a-b-c-d-e-f-g-h"},
	}

	for _, tc := range testCases {
		s.Run(tc.input, func() {
			s.Equal(tc.expected, pipeline.SanitizeName(tc.input))
		})
	}
}

func (s *PipelineTestSuite) TestRecordIsEntity() {
	rec := &pipeline.Record{Name: "Goblin", Category: "monster"}

	s.Equal("Goblin", rec.GetID())
	s.Equal("monster", rec.GetType())
}
