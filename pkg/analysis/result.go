package analysis

import (
	"encoding/json"

	"github.com/medirush/medirush-backend/pkg/enums"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
)

const systemPrompt = "You are a pharmacist's assistant that reads handwritten and printed medical prescriptions. " +
	"Extract every prescribed medicine with its dosage, frequency, and duration. " +
	"Note the prescribing doctor and registration number when visible, flag unclear handwriting as uncertain, " +
	"and if the image is not a prescription, say so instead of guessing."

const userPrompt = "Read this prescription image and extract the structured data."

// extractionSchema is the JSON schema the gateway enforces on the tool call.
var extractionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"isValid": map[string]any{
			"type":        "boolean",
			"description": "Whether the image is a readable medical prescription",
		},
		"doctorName": map[string]any{
			"type":        "string",
			"description": "Name of the prescribing doctor if visible",
		},
		"doctorRegistration": map[string]any{
			"type":        "string",
			"description": "Medical registration number of the doctor if visible",
		},
		"patientName": map[string]any{
			"type":        "string",
			"description": "Patient name if visible",
		},
		"prescriptionDate": map[string]any{
			"type":        "string",
			"description": "Date on the prescription if visible",
		},
		"medicines": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":        map[string]any{"type": "string"},
					"genericName": map[string]any{"type": "string", "description": "Generic/salt name if known"},
					"dosage":      map[string]any{"type": "string"},
					"frequency":   map[string]any{"type": "string"},
					"duration":    map[string]any{"type": "string"},
					"quantity":    map[string]any{"type": "integer"},
					"instructions": map[string]any{
						"type":        "string",
						"description": "Special instructions for this medicine",
					},
					"isControlled": map[string]any{
						"type":        "boolean",
						"description": "Whether this is a controlled substance",
					},
				},
				"required": []string{"name"},
			},
		},
		"diagnosis": map[string]any{
			"type":        "string",
			"description": "Diagnosis or condition mentioned if any",
		},
		"specialInstructions": map[string]any{
			"type":        "string",
			"description": "Special instructions or notes from the doctor",
		},
		"warnings": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"confidence": map[string]any{
			"type": "string",
			"enum": []string{"high", "medium", "low"},
		},
		"uncertainParts": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Parts of the prescription that were unclear",
		},
	},
	"required": []string{"isValid", "medicines", "confidence"},
}

// ExtractedMedicine is one medicine line read off the prescription.
type ExtractedMedicine struct {
	Name         string `json:"name"`
	GenericName  string `json:"genericName,omitempty"`
	Dosage       string `json:"dosage,omitempty"`
	Frequency    string `json:"frequency,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Quantity     int    `json:"quantity,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	IsControlled bool   `json:"isControlled,omitempty"`
}

// Analysis is the structured read of a prescription image.
type Analysis struct {
	IsValid             bool                `json:"isValid"`
	Medicines           []ExtractedMedicine `json:"medicines"`
	Confidence          enums.Confidence    `json:"confidence"`
	Warnings            []string            `json:"warnings,omitempty"`
	DoctorName          string              `json:"doctorName,omitempty"`
	DoctorRegistration  string              `json:"doctorRegistration,omitempty"`
	PatientName         string              `json:"patientName,omitempty"`
	PrescriptionDate    string              `json:"prescriptionDate,omitempty"`
	Diagnosis           string              `json:"diagnosis,omitempty"`
	SpecialInstructions string              `json:"specialInstructions,omitempty"`
	UncertainParts      []string            `json:"uncertainParts,omitempty"`
}

// Result wraps an analysis with its provenance. Parsed is false when the
// model replied with prose instead of the extraction tool; RawContent then
// carries that prose verbatim.
type Result struct {
	Parsed     bool     `json:"parsed"`
	RawContent string   `json:"rawContent,omitempty"`
	Analysis   Analysis `json:"analysis"`
}

func parseExtraction(arguments []byte) (*Analysis, error) {
	var parsed Analysis
	if err := json.Unmarshal(arguments, &parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysisFailed, err, "decode extraction arguments")
	}
	if parsed.Medicines == nil {
		parsed.Medicines = []ExtractedMedicine{}
	}
	if !parsed.Confidence.IsValid() {
		parsed.Confidence = enums.ConfidenceLow
	}
	return &parsed, nil
}
