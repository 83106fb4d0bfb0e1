package prescriptions

import (
	"context"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/medirush/medirush-backend/internal/cart"
	"github.com/medirush/medirush-backend/pkg/analysis"
	"github.com/medirush/medirush-backend/pkg/config"
	"github.com/medirush/medirush-backend/pkg/db/models"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
	"github.com/medirush/medirush-backend/pkg/logger"
)

// Analyzer reads a prescription image into structured data.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (*analysis.Result, error)
}

// GenerationStore tracks per-user upload generations in Redis.
type GenerationStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string) (string, error)
	UploadGenerationKey(userID string) string
}

// MedicineSearcher finds catalog rows matching extracted medicine names.
type MedicineSearcher interface {
	SearchByName(ctx context.Context, name string, limit int) ([]models.Medicine, error)
}

// Service analyzes prescription uploads and merges the reads into the cart.
type Service interface {
	AnalyzeUpload(ctx context.Context, userID uuid.UUID, image []byte) (*UploadResult, error)
	MergeToCart(ctx context.Context, userID uuid.UUID, items []analysis.ExtractedMedicine) (*MergeResult, error)
}

// UploadResult is the outcome of a single analysis round trip. Superseded is
// set when the user uploaded a newer image while this one was in flight; the
// caller must discard a superseded read.
type UploadResult struct {
	Result     *analysis.Result `json:"result"`
	Generation int64            `json:"generation"`
	Superseded bool             `json:"superseded"`
}

// MatchedMedicine pairs an extracted name with the catalog row it resolved to.
type MatchedMedicine struct {
	Requested string          `json:"requested"`
	Medicine  models.Medicine `json:"medicine"`
	Quantity  int             `json:"quantity"`
}

// MergeResult reports which extracted medicines made it into the cart.
type MergeResult struct {
	Matched   []MatchedMedicine `json:"matched"`
	Unmatched []string          `json:"unmatched"`
	Cart      *cart.Cart        `json:"cart,omitempty"`
}

type service struct {
	analyzer Analyzer
	gens     GenerationStore
	catalog  MedicineSearcher
	cart     cart.Service
	cfg      config.AnalysisConfig
	logg     *logger.Logger
}

// NewService wires prescription dependencies.
func NewService(
	analyzer Analyzer,
	gens GenerationStore,
	catalogSearch MedicineSearcher,
	cartSvc cart.Service,
	cfg config.AnalysisConfig,
	logg *logger.Logger,
) (Service, error) {
	if analyzer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "analyzer required")
	}
	if gens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "generation store required")
	}
	if catalogSearch == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog searcher required")
	}
	if cartSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart service required")
	}
	return &service{
		analyzer: analyzer,
		gens:     gens,
		catalog:  catalogSearch,
		cart:     cartSvc,
		cfg:      cfg,
		logg:     logg,
	}, nil
}

// AnalyzeUpload validates the image locally, claims an upload generation,
// and runs a single analysis round trip. Size and type are rejected before
// any network traffic. When the user re-uploads while a read is in flight,
// the older read comes back marked superseded instead of clobbering the
// newer one.
func (s *service) AnalyzeUpload(ctx context.Context, userID uuid.UUID, image []byte) (*UploadResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if len(image) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image data required")
	}

	maxBytes := s.cfg.MaxUploadMB * 1024 * 1024
	if maxBytes > 0 && len(image) > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodePayloadTooLarge, "image exceeds the upload size limit").
			WithDetails(map[string]any{"maxBytes": maxBytes, "gotBytes": len(image)})
	}

	detected := mimetype.Detect(image)
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidFileType, "file must be an image").
			WithDetails(map[string]any{"detected": detected.String()})
	}

	genKey := s.gens.UploadGenerationKey(userID.String())
	generation, err := s.gens.Incr(ctx, genKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim upload generation")
	}

	analyzeCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		analyzeCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	result, err := s.analyzer.Analyze(analyzeCtx, image, detected.String())
	if err != nil {
		return nil, err
	}

	superseded, err := s.isSuperseded(ctx, genKey, generation)
	if err != nil {
		return nil, err
	}
	if superseded && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"user_id": userID.String(), "generation": generation})
		s.logg.Info(logCtx, "discarding superseded prescription analysis")
	}

	return &UploadResult{
		Result:     result,
		Generation: generation,
		Superseded: superseded,
	}, nil
}

func (s *service) isSuperseded(ctx context.Context, genKey string, generation int64) (bool, error) {
	current, err := s.gens.Get(ctx, genKey)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read upload generation")
	}
	latest, err := strconv.ParseInt(current, 10, 64)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse upload generation")
	}
	return latest != generation, nil
}

// MergeToCart adds the extracted medicines the catalog recognizes to the
// user's cart. Merging never happens implicitly after analysis; it is the
// user's explicit second step.
func (s *service) MergeToCart(ctx context.Context, userID uuid.UUID, items []analysis.ExtractedMedicine) (*MergeResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no medicines to merge")
	}

	result := &MergeResult{Matched: []MatchedMedicine{}, Unmatched: []string{}}
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}

		matches, err := s.catalog.SearchByName(ctx, name, 1)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search catalog")
		}
		if len(matches) == 0 {
			if generic := strings.TrimSpace(item.GenericName); generic != "" {
				matches, err = s.catalog.SearchByName(ctx, generic, 1)
				if err != nil {
					return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search catalog")
				}
			}
		}
		if len(matches) == 0 {
			result.Unmatched = append(result.Unmatched, name)
			continue
		}

		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		updated, err := s.cart.AddItem(ctx, userID, matches[0].ID, quantity)
		if err != nil {
			return nil, err
		}
		result.Cart = updated
		result.Matched = append(result.Matched, MatchedMedicine{
			Requested: name,
			Medicine:  matches[0],
			Quantity:  quantity,
		})
	}

	return result, nil
}
