package extract

import (
	"strings"

	"grape-monitor/internal/models"
)

// chemicalTreatments is read-only after package initialization.
var chemicalTreatments = map[string][]models.Treatment{
	"Mildew": {
		{Name: "Kükürt Bazlı Fungisitler", Description: "Kükürt içeren fungisitler, özellikle erken evrelerde ve düşük hastalık basıncında etkili olabilir."},
		{Name: "Bakır Bazlı Fungisitler", Description: "Bordo bulamacı gibi bakır içeren ürünler, hem koruyucu hem de tedavi edici etki gösterir."},
		{Name: "Sistemik Fungisitler (Örn: Triazoller)", Description: "Hastalığın bitki içine nüfuz ettiği durumlarda sistemik etkili fungisitler tercih edilebilir."},
	},
	"Botrytis": {
		{Name: "Botrytis Fungisitleri", Description: "Botrytis kontrolü için spesifik fungisitler (örn: Cyprodinil + Fludioxonil içerenler) kullanılmalıdır."},
		{Name: "Trichoderma Harzianum", Description: "Biyolojik mücadele için faydalı mantarlar (örn: Trichoderma harzianum) kullanılabilir."},
	},
	"Black Rot": {
		{Name: "Mancozeb", Description: "Koruyucu olarak Mancozeb içerikli fungisitler uygulanabilir."},
		{Name: "Myclobutanil", Description: "Hastalık görüldüğünde Myclobutanil gibi sistemik fungisitler kullanılabilir."},
	},
	"Leaf Blight": {
		{Name: "Pyraclostrobin + Boscalid", Description: "Yaprak yanıklığı için geniş spektrumlu fungisitler etkili olabilir."},
		{Name: "Chlorothalonil", Description: "Koruyucu amaçlı chlorothalonil uygulamaları düşünülebilir."},
	},
	"Rust": {
		{Name: "Mancozeb", Description: "Pas hastalığına karşı Mancozeb veya çinko içeren fungisitler kullanılabilir."},
	},
	"Anthracnose": {
		{Name: "Mancozeb", Description: "Antraknoz için koruyucu olarak mancozeb etkili olabilir."},
		{Name: "Azoxystrobin", Description: "Sistemik koruma için azoxystrobin gibi strobilurin fungisitler kullanılabilir."},
	},
}

// Treatments returns a copy of the canned chemical treatments for a disease
// label. Exact matches win over case-insensitive ones.
func Treatments(label string) []models.Treatment {
	label = strings.TrimSpace(label)
	list, ok := chemicalTreatments[label]
	if !ok {
		for key, l := range chemicalTreatments {
			if strings.EqualFold(key, label) {
				list, ok = l, true
				break
			}
		}
	}
	if !ok {
		return nil
	}
	out := make([]models.Treatment, len(list))
	copy(out, list)
	return out
}

// ChemicalRecommendations turns the canned treatments for label into
// top-priority records.
func ChemicalRecommendations(label string, analysisID int64, today models.Date) []models.Recommendation {
	if models.IsHealthyLabel(label) {
		return nil
	}
	treatments := Treatments(label)
	recs := make([]models.Recommendation, 0, len(treatments))
	for _, t := range treatments {
		recs = append(recs, models.Recommendation{
			AnalysisID:         analysisID,
			Category:           models.CategoryChemical,
			Description:        t.Name + ": " + t.Description,
			Priority:           5,
			ImplementationDate: today,
		})
	}
	return recs
}
