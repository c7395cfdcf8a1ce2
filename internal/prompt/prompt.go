// Package prompt builds the grounding prompt sent to the generation model.
// Assembly is a pure function of (query, chunks): identical inputs, including
// chunk order, yield byte-identical prompts.
package prompt

import (
	"fmt"
	"strings"

	"kira-rag/internal/domain"
)

// SystemMessage frames the generation call; the grounding instructions
// themselves live in the user prompt.
const SystemMessage = "You are a helpful legal assistant specialized in Turkish Rental Law for residential and roofed workplaces."

// RefusalPhrase is the fixed answer the model is instructed to emit when the
// supplied passages do not answer the question.
const RefusalPhrase = "Sağlanan bilgiler arasında bu soruya kesin bir cevap bulamadım."

const noContextTemplate = `Sen Türk Borçlar Kanunu'nun Konut ve Çatılı İşyeri Kiraları bölümü hakkında uzman bir hukuk asistanısın.
Görevin, kullanıcının sorusunu yanıtlamaktır. Ancak, bu soruyla ilgili spesifik bir metin bulunamadı.
Lütfen genel bilginle veya soruyu yanıtlayamayacağını belirterek cevap ver.

SORU:
%s

CEVAP:
`

const groundedTemplate = `Sen Türk Borçlar Kanunu'nun Konut ve Çatılı İşyeri Kiraları bölümü hakkında uzman bir hukuk asistanısın.
Görevin, kullanıcının sorusunu SADECE aşağıda sağlanan METİNLERİ kullanarak yanıtlamaktır.
Cevabını oluştururken, bilgiyi hangi maddeden (MADDE numarası) ve metinden (METİN Numarası) aldığını belirt. Örneğin: "(Kaynak: METİN 1, MADDE 339)".
Eğer sağlanan metinlerde sorunun cevabı yoksa, "%s" şeklinde yanıt ver.
Cevabın açık, anlaşılır ve Türkçe olmalıdır. Yorum yapma veya metinlerin dışında bilgi ekleme.

METİNLER:
%s
SORU:
%s

CEVAP:
`

// Assemble renders the grounding prompt for query over the retrieved chunks,
// in retrieval order. With no chunks it falls back to the no-context template,
// which tells the model no specific passage was found.
func Assemble(query string, chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return fmt.Sprintf(noContextTemplate, query)
	}

	var ctx strings.Builder
	for i, chunk := range chunks {
		number := chunk.Number
		if number == "" {
			number = "Bilinmeyen Madde"
		}
		header := chunk.Header
		if header == "" {
			header = "Başlık Yok"
		}
		fmt.Fprintf(&ctx, "METİN %d (%s - Başlık: %s):\n", i+1, number, header)
		ctx.WriteString(chunk.Document)
		ctx.WriteString("\n---\n")
	}

	return fmt.Sprintf(groundedTemplate, RefusalPhrase, ctx.String(), query)
}
