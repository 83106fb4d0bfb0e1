package prescriptions

import (
	"context"
	"strconv"
	"testing"

	"github.com/google/uuid"

	"github.com/medirush/medirush-backend/internal/cart"
	"github.com/medirush/medirush-backend/pkg/analysis"
	"github.com/medirush/medirush-backend/pkg/config"
	"github.com/medirush/medirush-backend/pkg/db/models"
	"github.com/medirush/medirush-backend/pkg/enums"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
)

var pngImage = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 64)...)

type fakeAnalyzer struct {
	result  *analysis.Result
	err     error
	onCall  func()
	gotMIME string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, image []byte, mimeType string) (*analysis.Result, error) {
	f.gotMIME = mimeType
	if f.onCall != nil {
		f.onCall()
	}
	return f.result, f.err
}

type fakeGenStore struct {
	counters map[string]int64
}

func newFakeGenStore() *fakeGenStore {
	return &fakeGenStore{counters: map[string]int64{}}
}

func (f *fakeGenStore) Incr(ctx context.Context, key string) (int64, error) {
	f.counters[key]++
	return f.counters[key], nil
}

func (f *fakeGenStore) Get(ctx context.Context, key string) (string, error) {
	return strconv.FormatInt(f.counters[key], 10), nil
}

func (f *fakeGenStore) UploadGenerationKey(userID string) string {
	return "test:upload_gen:" + userID
}

type fakeSearcher struct {
	byName map[string]models.Medicine
}

func (f *fakeSearcher) SearchByName(ctx context.Context, name string, limit int) ([]models.Medicine, error) {
	if med, ok := f.byName[name]; ok {
		return []models.Medicine{med}, nil
	}
	return nil, nil
}

type fakeCartService struct {
	added map[uuid.UUID]int
}

func newFakeCartService() *fakeCartService {
	return &fakeCartService{added: map[uuid.UUID]int{}}
}

func (f *fakeCartService) AddItem(ctx context.Context, userID, medicineID uuid.UUID, deltaQty int) (*cart.Cart, error) {
	if deltaQty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity to add must be positive")
	}
	f.added[medicineID] += deltaQty
	return &cart.Cart{}, nil
}

func (f *fakeCartService) SetQuantity(ctx context.Context, userID, medicineID uuid.UUID, quantity int) (*cart.Cart, error) {
	return &cart.Cart{}, nil
}

func (f *fakeCartService) RemoveItem(ctx context.Context, userID, medicineID uuid.UUID) (*cart.Cart, error) {
	return &cart.Cart{}, nil
}

func (f *fakeCartService) Clear(ctx context.Context, userID uuid.UUID) error { return nil }

func (f *fakeCartService) Get(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	return &cart.Cart{}, nil
}

func analysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{MaxUploadMB: 5}
}

func parsedResult() *analysis.Result {
	return &analysis.Result{
		Parsed: true,
		Analysis: analysis.Analysis{
			IsValid:    true,
			Medicines:  []analysis.ExtractedMedicine{{Name: "Paracetamol 500mg", Quantity: 2}},
			Confidence: enums.ConfidenceHigh,
		},
	}
}

func newService(t *testing.T, analyzer *fakeAnalyzer, gens *fakeGenStore, searcher *fakeSearcher, cartSvc *fakeCartService) Service {
	t.Helper()
	svc, err := NewService(analyzer, gens, searcher, cartSvc, analysisConfig(), nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestAnalyzeUploadHappyPath(t *testing.T) {
	analyzer := &fakeAnalyzer{result: parsedResult()}
	svc := newService(t, analyzer, newFakeGenStore(), &fakeSearcher{}, newFakeCartService())

	result, err := svc.AnalyzeUpload(context.Background(), uuid.New(), pngImage)
	if err != nil {
		t.Fatalf("AnalyzeUpload returned error: %v", err)
	}
	if result.Superseded {
		t.Fatal("single upload must not be superseded")
	}
	if result.Generation != 1 {
		t.Fatalf("expected generation 1, got %d", result.Generation)
	}
	if analyzer.gotMIME != "image/png" {
		t.Fatalf("expected sniffed mime image/png, got %q", analyzer.gotMIME)
	}
	if !result.Result.Parsed {
		t.Fatal("expected parsed result passthrough")
	}
}

func TestAnalyzeUploadRejectsOversizedImage(t *testing.T) {
	svc := newService(t, &fakeAnalyzer{result: parsedResult()}, newFakeGenStore(), &fakeSearcher{}, newFakeCartService())

	oversized := make([]byte, 5*1024*1024+1)
	copy(oversized, pngImage)

	_, err := svc.AnalyzeUpload(context.Background(), uuid.New(), oversized)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePayloadTooLarge {
		t.Fatalf("expected payload too large error, got %v", err)
	}
}

func TestAnalyzeUploadRejectsNonImage(t *testing.T) {
	analyzer := &fakeAnalyzer{result: parsedResult()}
	svc := newService(t, analyzer, newFakeGenStore(), &fakeSearcher{}, newFakeCartService())

	_, err := svc.AnalyzeUpload(context.Background(), uuid.New(), []byte("%PDF-1.4 definitely not an image"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidFileType {
		t.Fatalf("expected invalid file type error, got %v", err)
	}
	if analyzer.gotMIME != "" {
		t.Fatal("rejected upload must not reach the analyzer")
	}
}

func TestAnalyzeUploadMarksSupersededRead(t *testing.T) {
	gens := newFakeGenStore()
	userID := uuid.New()

	analyzer := &fakeAnalyzer{result: parsedResult()}
	// A second upload lands while the first is still at the gateway.
	analyzer.onCall = func() {
		analyzer.onCall = nil
		_, _ = gens.Incr(context.Background(), gens.UploadGenerationKey(userID.String()))
	}

	svc := newService(t, analyzer, gens, &fakeSearcher{}, newFakeCartService())

	result, err := svc.AnalyzeUpload(context.Background(), userID, pngImage)
	if err != nil {
		t.Fatalf("AnalyzeUpload returned error: %v", err)
	}
	if !result.Superseded {
		t.Fatal("expected first read marked superseded")
	}
}

func TestAnalyzeUploadPropagatesGatewayErrors(t *testing.T) {
	analyzer := &fakeAnalyzer{err: pkgerrors.New(pkgerrors.CodeRateLimit, "analysis gateway rate limit exceeded")}
	svc := newService(t, analyzer, newFakeGenStore(), &fakeSearcher{}, newFakeCartService())

	_, err := svc.AnalyzeUpload(context.Background(), uuid.New(), pngImage)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestMergeToCartSplitsMatches(t *testing.T) {
	med := models.Medicine{ID: uuid.New(), Name: "Paracetamol 500mg", Category: "Pain Relief", Price: 25, MRP: 30}
	searcher := &fakeSearcher{byName: map[string]models.Medicine{"Paracetamol 500mg": med}}
	cartSvc := newFakeCartService()
	svc := newService(t, &fakeAnalyzer{result: parsedResult()}, newFakeGenStore(), searcher, cartSvc)

	result, err := svc.MergeToCart(context.Background(), uuid.New(), []analysis.ExtractedMedicine{
		{Name: "Paracetamol 500mg", Quantity: 2},
		{Name: "Obscurol 10mg"},
	})
	if err != nil {
		t.Fatalf("MergeToCart returned error: %v", err)
	}
	if len(result.Matched) != 1 || result.Matched[0].Medicine.ID != med.ID {
		t.Fatalf("unexpected matches: %+v", result.Matched)
	}
	if result.Matched[0].Quantity != 2 {
		t.Fatalf("expected extracted quantity honored, got %d", result.Matched[0].Quantity)
	}
	if len(result.Unmatched) != 1 || result.Unmatched[0] != "Obscurol 10mg" {
		t.Fatalf("unexpected unmatched: %+v", result.Unmatched)
	}
	if cartSvc.added[med.ID] != 2 {
		t.Fatalf("expected 2 units added to cart, got %d", cartSvc.added[med.ID])
	}
}

func strPtr(s string) *string { return &s }

func TestMergeToCartFallsBackToGenericName(t *testing.T) {
	med := models.Medicine{ID: uuid.New(), Name: "Paracetamol 500mg", GenericName: strPtr("Paracetamol"), Category: "Pain Relief", Price: 25, MRP: 30}
	searcher := &fakeSearcher{byName: map[string]models.Medicine{"Paracetamol": med}}
	cartSvc := newFakeCartService()
	svc := newService(t, &fakeAnalyzer{result: parsedResult()}, newFakeGenStore(), searcher, cartSvc)

	result, err := svc.MergeToCart(context.Background(), uuid.New(), []analysis.ExtractedMedicine{
		{Name: "Calpol 500", GenericName: "Paracetamol", Quantity: 3},
	})
	if err != nil {
		t.Fatalf("MergeToCart returned error: %v", err)
	}
	if len(result.Matched) != 1 || result.Matched[0].Medicine.ID != med.ID {
		t.Fatalf("expected generic name match, got %+v", result)
	}
	if result.Matched[0].Requested != "Calpol 500" {
		t.Fatalf("expected the extracted brand name reported, got %q", result.Matched[0].Requested)
	}
	if len(result.Unmatched) != 0 {
		t.Fatalf("unexpected unmatched: %+v", result.Unmatched)
	}
	if cartSvc.added[med.ID] != 3 {
		t.Fatalf("expected 3 units added to cart, got %d", cartSvc.added[med.ID])
	}
}

func TestMergeToCartDefaultsQuantity(t *testing.T) {
	med := models.Medicine{ID: uuid.New(), Name: "Cetirizine 10mg", Category: "Allergy", Price: 18, MRP: 22}
	searcher := &fakeSearcher{byName: map[string]models.Medicine{"Cetirizine 10mg": med}}
	cartSvc := newFakeCartService()
	svc := newService(t, &fakeAnalyzer{result: parsedResult()}, newFakeGenStore(), searcher, cartSvc)

	_, err := svc.MergeToCart(context.Background(), uuid.New(), []analysis.ExtractedMedicine{
		{Name: "Cetirizine 10mg"},
	})
	if err != nil {
		t.Fatalf("MergeToCart returned error: %v", err)
	}
	if cartSvc.added[med.ID] != 1 {
		t.Fatalf("expected default quantity 1, got %d", cartSvc.added[med.ID])
	}
}

func TestMergeToCartRequiresItems(t *testing.T) {
	svc := newService(t, &fakeAnalyzer{result: parsedResult()}, newFakeGenStore(), &fakeSearcher{}, newFakeCartService())

	_, err := svc.MergeToCart(context.Background(), uuid.New(), nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
