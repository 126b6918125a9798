package parser

import "github.com/insightdelivered/marksheet-reader/internal/models"

// Board titles printed on senior secondary (12th) marksheets. These are
// checked first because their titles also contain "secondary".
var class12Markers = []string{
	"Senior School Certificate", "Senior Secondary", "Higher Secondary",
	"Class XII", "Intermediate Examination", "AISSCE",
}

var class10Markers = []string{
	"Secondary School Examination", "Secondary School Certificate",
	"Class X ", "Matriculation", "High School Examination", "AISSE",
}

// DetectClass guesses the examination level from marksheet text.
func DetectClass(text string) (models.ClassType, bool) {
	if containsAny(text, class12Markers) {
		return models.Class12, true
	}
	if containsAny(text, class10Markers) {
		return models.Class10, true
	}
	return "", false
}
