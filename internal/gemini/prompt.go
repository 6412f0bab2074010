package gemini

import (
	"fmt"
	"strings"
	"time"

	"grape-monitor/internal/models"
)

// SystemInstruction is shared by every provider.
const SystemInstruction = `Sen üzüm bağcılığı ve bitki hastalıkları konusunda uzman bir yapay zekasın.
Yalnızca istenen JSON formatında yanıt ver. Açıklama metni veya markdown kod bloğu ekleme.`

const diagnosisExample = `{"disease_detected": "Powdery Mildew", "confidence_score": 0.95, "explanation": "Yapraklarda beyaz, pudramsı lekeler var.", "detailed_description": "Külleme, Erysiphales takımındaki mantarların neden olduğu bir hastalıktır.", "possible_causes": "Yüksek nem, zayıf hava sirkülasyonu ve 20-25°C sıcaklık.", "immediate_actions": "1. Etkilenen yaprakları toplayıp imha edin. 2. Sık yaprakları budayarak havalandırmayı artırın."}`

// BuildDiagnosisPrompt asks for a single JSON object describing the plant in
// the attached image.
func BuildDiagnosisPrompt() string {
	var b strings.Builder
	b.WriteString("Ekteki üzüm yaprağı veya bitki görüntüsünü hastalık ve sağlık sorunları açısından analiz et. ")
	b.WriteString("Hastalığı belirle; 0.0 ile 1.0 arasında bir güven skoru, kısa bir açıklama, hastalığın detaylı tanımı, ")
	b.WriteString("olası nedenleri ve acil yapılması gerekenleri ver.\n")
	b.WriteString("Yanıtı çift tırnaklı anahtarlarla KATI JSON formatında ver; metin içindeki çift tırnakları kaçış karakteriyle yaz.\n")
	b.WriteString("Alanlar: 'disease_detected', 'confidence_score', 'explanation', 'detailed_description', 'possible_causes', 'immediate_actions'.\n")
	fmt.Fprintf(&b, "Örnek: %s\n", diagnosisExample)
	fmt.Fprintf(&b, "Hastalık tespit edilmezse 'disease_detected' alanını '%s', 'confidence_score' alanını 1.0 ", models.LabelHealthyTR)
	b.WriteString("ve 'explanation' alanını 'Hastalık belirtisi tespit edilmedi.' olarak ayarla.\n")
	b.WriteString("YANITIN SADECE JSON NESNESİ OLMALIDIR.")
	return b.String()
}

// BuildRecommendationPrompt asks for a JSON array of 3-5 recommendations for
// diag. weather is a one-line summary of current conditions.
func BuildRecommendationPrompt(diag *models.Diagnosis, weather string) string {
	today := models.NewDate(time.Now()).String()

	var b strings.Builder
	fmt.Fprintf(&b, "Analiz sonucu: Tespit Edilen Hastalık - %s (Güven: %.2f%%). ", diag.DiseaseLabel, diag.Confidence*100)
	fmt.Fprintf(&b, "Mevcut hava durumu: %s\n", weather)
	fmt.Fprintf(&b, "Bir uzman bağcı olarak %s için 3-5 pratik ve uygulanabilir tedavi, budama veya önleme önerisi sun. ", diag.DiseaseLabel)
	b.WriteString("Ticari ürün isimleri yerine aktif madde türlerini (örn: 'Bakır bazlı fungisitler') belirt.\n")
	b.WriteString("Yanıtın SADECE bir JSON nesne dizisi olmalıdır. Dizideki her nesnede şu alanlar OLMALIDIR: ")
	b.WriteString("'type' ('tedavi', 'budama', 'önleme' gibi), 'description' (detaylı açıklama), ")
	b.WriteString("'priority' (1-5 arası tam sayı, 5 en yüksek) ve 'implementation_date' (YYYY-MM-DD). ")
	b.WriteString("İsteğe bağlı olarak 'estimated_cost' (TL) ekleyebilirsin.\n")
	fmt.Fprintf(&b, `Örnek: [{"type": "tedavi", "description": "3 hafta boyunca haftalık bakır bazlı fungisit uygulayın.", "priority": 4, "implementation_date": "%s"}, `, today)
	fmt.Fprintf(&b, `{"type": "budama", "description": "Ciddi şekilde enfekte olmuş yaprakları çıkarıp imha edin.", "priority": 5, "implementation_date": "%s"}]`, today)
	return b.String()
}
