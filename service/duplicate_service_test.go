package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ludo-technologies/ilscn/domain"
)

func testManifests(t *testing.T) []string {
	t.Helper()
	files, err := NewAssemblyReader().CollectManifests([]string{testAssemblies}, true, domain.DefaultManifestPatterns(), nil)
	require.NoError(t, err)
	require.Len(t, files, 3)
	return files
}

func TestDuplicateService_Detect(t *testing.T) {
	svc := NewDuplicateService(nil, nil)
	req := domain.DefaultDuplicateRequest()

	resp, err := svc.Detect(context.Background(), testManifests(t), req)
	require.NoError(t, err)
	require.True(t, resp.Success)

	expected := []domain.Finding{
		{
			Rule:       domain.RuleSameType,
			Assembly:   "Billing",
			Type:       "Billing.Invoice",
			Method:     "Billing.Invoice::PrintHeader()",
			Severity:   domain.SeverityHigh,
			Confidence: domain.ConfidenceNormal,
			Message:    "Duplicate code with Billing.Invoice::PrintSummary()",
		},
		{
			Rule:       domain.RuleSameType,
			Assembly:   "Shapes",
			Type:       "Sample.Calculator",
			Method:     "Sample.Calculator::Add(int32,int32)",
			Severity:   domain.SeverityHigh,
			Confidence: domain.ConfidenceNormal,
			Message:    "Duplicate code with Sample.Calculator::Sum(int32,int32)",
		},
		{
			Rule:       domain.RuleSiblingTypes,
			Assembly:   "Shapes",
			Type:       "Sample.Circle",
			Method:     "Sample.Circle::Describe()",
			Severity:   domain.SeverityHigh,
			Confidence: domain.ConfidenceNormal,
			Message:    "Duplicate code with Sample.Square::Describe()",
		},
	}
	assert.Equal(t, expected, resp.Findings)

	stats := resp.Statistics
	assert.Equal(t, 3, stats.AssembliesAnalyzed)
	assert.Equal(t, 6, stats.TypesAnalyzed)
	assert.Equal(t, 14, stats.MethodsAnalyzed)
	assert.Equal(t, 13, stats.MethodsWithBody)
	assert.Equal(t, 3, stats.TotalFindings)
	assert.Equal(t, map[string]int{domain.RuleSameType: 2, domain.RuleSiblingTypes: 1}, stats.FindingsByRule)
	assert.Positive(t, stats.Comparisons)
	assert.Empty(t, resp.Expressions)
	assert.Same(t, req, resp.Request)
}

func TestDuplicateService_DetectOptions(t *testing.T) {
	shapes := []string{filepath.Join(testAssemblies, "shapes.asm.yaml")}

	tests := []struct {
		name    string
		modify  func(*domain.DuplicateRequest)
		methods []string
	}{
		{
			name:    "same type only",
			modify:  func(r *domain.DuplicateRequest) { r.Scopes = []domain.DuplicateScope{domain.ScopeSameType} },
			methods: []string{"Sample.Calculator::Add(int32,int32)"},
		},
		{
			name:    "sibling types only",
			modify:  func(r *domain.DuplicateRequest) { r.Scopes = []domain.DuplicateScope{domain.ScopeSiblingTypes} },
			methods: []string{"Sample.Circle::Describe()"},
		},
		{
			name:    "type filter drops the sibling",
			modify:  func(r *domain.DuplicateRequest) { r.TypeFilters = []string{"Sample.C*"} },
			methods: []string{"Sample.Calculator::Add(int32,int32)"},
		},
		{
			name:    "namespace filter",
			modify:  func(r *domain.DuplicateRequest) { r.TypeFilters = []string{"Sample.**"} },
			methods: []string{"Sample.Calculator::Add(int32,int32)", "Sample.Circle::Describe()"},
		},
		{
			name:    "long minimum sequence",
			modify:  func(r *domain.DuplicateRequest) { r.MinSequenceLength = 3 },
			methods: []string{"Sample.Circle::Describe()"},
		},
	}

	svc := NewDuplicateService(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.DefaultDuplicateRequest()
			tt.modify(req)

			resp, err := svc.Detect(context.Background(), shapes, req)
			require.NoError(t, err)

			var methods []string
			for _, f := range resp.Findings {
				methods = append(methods, f.Method)
			}
			assert.Equal(t, tt.methods, methods)
		})
	}
}

func TestDuplicateService_ShowExpressions(t *testing.T) {
	svc := NewDuplicateService(nil, nil)
	req := domain.DefaultDuplicateRequest()
	req.ShowExpressions = true
	req.Scopes = []domain.DuplicateScope{domain.ScopeSameType}

	resp, err := svc.Detect(context.Background(), []string{filepath.Join(testAssemblies, "shapes.asm.yaml")}, req)
	require.NoError(t, err)

	require.Len(t, resp.Expressions, 1)
	assert.Equal(t, domain.MethodExpressions{
		Method:      "Sample.Calculator::Add(int32,int32)",
		Expressions: []string{"add(ldarg[1], ldarg[2])", "ret(add(ldarg[1], ldarg[2]))"},
	}, resp.Expressions[0])
}

func TestDuplicateService_Errors(t *testing.T) {
	svc := NewDuplicateService(nil, nil)

	t.Run("invalid request", func(t *testing.T) {
		req := domain.DefaultDuplicateRequest()
		req.KeyPolicy = "token"
		_, err := svc.Detect(context.Background(), nil, req)
		require.Error(t, err)
	})

	t.Run("broken manifest", func(t *testing.T) {
		_, err := svc.Detect(context.Background(), []string{"../testdata/invalid/broken.asm.yaml"}, domain.DefaultDuplicateRequest())
		require.Error(t, err)
		assert.True(t, domain.HasErrorCode(err, domain.ErrCodeParseError))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := svc.Detect(ctx, testManifests(t), domain.DefaultDuplicateRequest())
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("no files", func(t *testing.T) {
		resp, err := svc.Detect(context.Background(), nil, domain.DefaultDuplicateRequest())
		require.NoError(t, err)
		assert.Empty(t, resp.Findings)
		assert.Zero(t, resp.Statistics.AssembliesAnalyzed)
	})
}

func TestDuplicateService_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	svc := NewDuplicateService(nil, zap.New(core))

	_, err := svc.Detect(context.Background(), []string{filepath.Join(testAssemblies, "shapes.asm.yaml")}, domain.DefaultDuplicateRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("assembly scanned").Len())
	assert.Equal(t, 1, logs.FilterMessage("duplicate detection completed").Len())

	hits := logs.FilterMessage("duplicate code found").All()
	require.Len(t, hits, 2)
	assert.Equal(t, domain.RuleSameType, hits[0].ContextMap()["rule"])
}

func TestDuplicateService_ExtractExpressions(t *testing.T) {
	svc := NewDuplicateService(nil, nil)
	shapes := filepath.Join(testAssemblies, "shapes.asm.yaml")

	listing, err := svc.ExtractExpressions(context.Background(), shapes, "Sample.Circle::Describe")
	require.NoError(t, err)
	assert.Equal(t, "Sample.Circle::Describe()", listing.Method)
	assert.Equal(t, []string{
		"call[void System.Console::WriteLine(string)](ldstr[\"shape\"])",
		"callvirt[instance float64 Sample.Shape::Area()](ldarg[0])",
		"call[void System.Console::WriteLine(float64)](callvirt[instance float64 Sample.Shape::Area()](ldarg[0]))",
		"ret()",
	}, listing.Expressions)

	_, err = svc.ExtractExpressions(context.Background(), shapes, "Sample.Circle::Missing")
	require.Error(t, err)
	assert.True(t, domain.HasErrorCode(err, domain.ErrCodeInvalidInput))

	_, err = svc.ExtractExpressions(context.Background(), "../testdata/invalid/broken.asm.yaml", "Broken.T::M")
	assert.True(t, domain.HasErrorCode(err, domain.ErrCodeParseError))
}

func TestFindingCollector(t *testing.T) {
	svc := NewDuplicateService(nil, nil)
	req := domain.DefaultDuplicateRequest()
	req.ShowExpressions = true

	resp, err := svc.Detect(context.Background(), testManifests(t), req)
	require.NoError(t, err)

	// one listing per flagged method, in report order
	var methods []string
	for _, e := range resp.Expressions {
		methods = append(methods, e.Method)
	}
	assert.Equal(t, []string{
		"Billing.Invoice::PrintHeader()",
		"Sample.Calculator::Add(int32,int32)",
		"Sample.Circle::Describe()",
	}, methods)

	collector := NewFindingCollector()
	collector.ForRule(domain.RuleSameType, "A").Report(nil, domain.SeverityHigh, domain.ConfidenceNormal, "ignored")
	assert.Empty(t, collector.Findings())
}
