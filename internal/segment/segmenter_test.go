package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStatute = `DÖRDÜNCÜ BÖLÜM
Konut ve Çatılı İşyeri Kiraları

A. Uygulama alanı
MADDE 339 - Konut ve çatılı işyeri kiralarına ilişkin hükümler, bunlarla birlikte kullanımı kiracıya bırakılan eşya hakkında da uygulanır.
Kamu kurum ve kuruluşlarının, hangi usul ve esaslar içinde olursa olsun yaptıkları bütün kira sözleşmelerine de bu hükümler uygulanır.

B. Bağlantılı sözleşme
MADDE 340 - Konut ve çatılı işyeri kiralarında sözleşmenin kurulması ya da sürdürülmesi, kiracının yararı olmaksızın bir borç altına girmesine bağlanmışsa, kirayla bağlantılı bu sözleşme geçersizdir.

C. Kullanma giderleri
MADDE 341 - Kiracı, konut ve çatılı işyeri kiralarında, sözleşmede aksi öngörülmemişse, ısıtma, aydınlatma ve su gibi kullanma giderlerine katlanmakla yükümlüdür.
`

func TestSegmentCompleteness(t *testing.T) {
	articles, dropped := Segment(sampleStatute)

	require.Len(t, articles, 3)
	assert.Empty(t, dropped)

	seen := map[string]bool{}
	for _, a := range articles {
		assert.NotEmpty(t, a.Number)
		assert.NotEmpty(t, a.Text)
		assert.False(t, seen[a.Number], "duplicate article number %s", a.Number)
		seen[a.Number] = true
	}

	assert.Equal(t, "MADDE 339", articles[0].Number)
	assert.Equal(t, "MADDE 340", articles[1].Number)
	assert.Equal(t, "MADDE 341", articles[2].Number)
}

func TestSegmentHeaderAttribution(t *testing.T) {
	articles, _ := Segment(sampleStatute)
	require.Len(t, articles, 3)

	assert.Equal(t, "A. Uygulama alanı", articles[0].Header)
	assert.Equal(t, "B. Bağlantılı sözleşme", articles[1].Header)
	assert.Equal(t, "C. Kullanma giderleri", articles[2].Header)
}

func TestSegmentBoundaryCorrectness(t *testing.T) {
	articles, _ := Segment(sampleStatute)
	require.Len(t, articles, 3)

	// No article body may contain the heading line attributed to the
	// following article.
	for i := 0; i < len(articles)-1; i++ {
		next := articles[i+1]
		if next.Header == "" {
			continue
		}
		assert.NotContains(t, articles[i].Text, next.Header,
			"article %s leaks the header of %s", articles[i].Number, next.Number)
	}

	// The multi-line body of the first article survives the truncation.
	assert.Contains(t, articles[0].Text, "Kamu kurum ve kuruluşlarının")
}

func TestSegmentNearestHeadingWins(t *testing.T) {
	raw := `A. Kiraya verenin borçları
I. Teslim borcu
MADDE 301 - Kiraya veren, kiralananı kararlaştırılan tarihte teslim etmekle yükümlüdür.
`
	articles, _ := Segment(raw)
	require.Len(t, articles, 1)

	// Two candidates precede the marker; the bottom-most one is attributed.
	assert.Equal(t, "I. Teslim borcu", articles[0].Header)
}

func TestSegmentSameLineTailJoinsBody(t *testing.T) {
	raw := `MADDE 342 - Kiracıya güvence verme borcu getirilmişse,
bu güvence üç aylık kira bedelini aşamaz.
`
	articles, _ := Segment(raw)
	require.Len(t, articles, 1)
	assert.Equal(t, "Kiracıya güvence verme borcu getirilmişse,\nbu güvence üç aylık kira bedelini aşamaz.", articles[0].Text)
}

func TestSegmentDropsEmptyArticles(t *testing.T) {
	raw := `MADDE 350 -

MADDE 351 - Kira sözleşmesi sona erer.
`
	articles, dropped := Segment(raw)

	require.Len(t, articles, 1)
	assert.Equal(t, "MADDE 351", articles[0].Number)
	assert.Equal(t, []string{"MADDE 350"}, dropped)
}

func TestSegmentIdempotence(t *testing.T) {
	first, _ := Segment(sampleStatute)
	second, _ := Segment(sampleStatute)
	assert.Equal(t, first, second)
}

func TestSegmentIgnoresMidLineKeyword(t *testing.T) {
	raw := `MADDE 344 - Yenilenen kira dönemlerinde uygulanacak kira bedeli, bkz. MADDE 345 hükümleri saklıdır.
`
	articles, _ := Segment(raw)
	require.Len(t, articles, 1)
	assert.Equal(t, "MADDE 344", articles[0].Number)
}

func TestSegmentKeywordIsCaseExact(t *testing.T) {
	raw := `Madde 5 - küçük harfli satır eşleşmemelidir.
MADDE 6 - Bu madde eşleşir.
`
	articles, _ := Segment(raw)
	require.Len(t, articles, 1)
	assert.Equal(t, "MADDE 6", articles[0].Number)
}

func TestSegmentMarkerLineNeverBecomesHeader(t *testing.T) {
	// A marker line between two articles must not be miscaptured as the
	// second article's heading.
	raw := `MADDE 360 - Birinci maddenin metni.
MADDE 361 - İkinci maddenin metni.
`
	articles, _ := Segment(raw)
	require.Len(t, articles, 2)
	assert.Empty(t, articles[1].Header)
}

func TestSegmentNoMarkers(t *testing.T) {
	articles, dropped := Segment("serbest metin, madde işareti yok")
	assert.Empty(t, articles)
	assert.Empty(t, dropped)
}

func TestSegmentTrimsWhitespace(t *testing.T) {
	articles, _ := Segment(sampleStatute)
	for _, a := range articles {
		assert.Equal(t, strings.TrimSpace(a.Text), a.Text)
	}
}
