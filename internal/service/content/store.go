package content

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ifuryst/postq/internal/models"
)

// LoadTemplates reads the template document keyed by slot
func LoadTemplates(path string) (*models.TemplateSet, error) {
	var set models.TemplateSet
	if err := readDocument(path, &set); err != nil {
		return nil, err
	}
	if set.Templates == nil {
		return nil, &models.ConfigLoadError{Path: path, Err: fmt.Errorf("missing \"templates\" object")}
	}
	return &set, nil
}

// LoadLexicon reads the pillar vocabulary document
func LoadLexicon(path string) (*models.Lexicon, error) {
	var lexicon models.Lexicon
	if err := readDocument(path, &lexicon); err != nil {
		return nil, err
	}
	if lexicon.Pillars == nil {
		return nil, &models.ConfigLoadError{Path: path, Err: fmt.Errorf("missing \"pillars\" object")}
	}
	return &lexicon, nil
}

func readDocument(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &models.ConfigLoadError{Path: path, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &models.ConfigLoadError{Path: path, Err: fmt.Errorf("failed to parse JSON: %w", err)}
	}
	return nil
}
