package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// docDown mirrors the markup family served for a falling instrument: the
// headline price under .no_today, the day change inside a "minus"/"down"
// block, then the percent label, then trailing legend labels.
const docDown = `<html><body>
<div class="rate_info">
  <div class="today">
    <p class="no_today"><em class="no_down"><span class="blind">71,500</span></em></p>
    <p class="no_exday">
      <em class="no_down"><span class="ico minus"></span><span class="blind">1,200</span></em>
      <em class="no_down"><span class="blind">1.71%</span></em>
    </p>
  </div>
  <span class="blind">52-week range</span>
</div>
</body></html>`

const docUp = `<html><body>
<div class="rate_info">
  <div class="today">
    <p class="no_today"><em class="no_up"><span class="blind">48,350</span></em></p>
    <p class="no_exday">
      <em class="no_up"><span class="ico plus"></span><span class="blind">650</span></em>
      <em class="no_up"><span class="blind">+1.36%</span></em>
    </p>
  </div>
  <span class="blind">volume</span>
</div>
</body></html>`

const docFlat = `<html><body>
<p class="no_today"><em><span class="blind">12,000</span></em></p>
<p class="no_exday"><em><span class="blind">0.00%</span></em></p>
<span class="blind">volume</span>
</body></html>`

// docNoHeadline has no .no_today block; the price must come from the
// fallback scan over all hidden labels.
const docNoHeadline = `<html><body>
<span class="blind">9,870</span>
<span class="blind">120</span>
<span class="blind">1.23%</span>
</body></html>`

const docEmpty = `<html><body>
<span class="blind">up</span>
<span class="blind">%</span>
<p>no labels worth anything</p>
</body></html>`

func TestExtract_DownwardChange(t *testing.T) {
	r, err := Extract(docDown)
	require.NoError(t, err)
	require.Equal(t, int64(71500), r.Price)
	require.Equal(t, int64(-1200), r.Change)
	require.InDelta(t, -1.71, r.ChangeRate, 1e-9)
}

func TestExtract_UpwardChange(t *testing.T) {
	r, err := Extract(docUp)
	require.NoError(t, err)
	require.Equal(t, int64(48350), r.Price)
	require.Equal(t, int64(650), r.Change)
	require.InDelta(t, 1.36, r.ChangeRate, 1e-9)
}

func TestExtract_FlatDay(t *testing.T) {
	r, err := Extract(docFlat)
	require.NoError(t, err)
	require.Equal(t, int64(12000), r.Price)
	require.Equal(t, int64(0), r.Change)
	// No change candidate found, so the rate keeps its positive magnitude.
	require.InDelta(t, 0.0, r.ChangeRate, 1e-9)
}

func TestExtract_FallbackScanWhenHeadlineMissing(t *testing.T) {
	r, err := Extract(docNoHeadline)
	require.NoError(t, err)
	require.Equal(t, int64(9870), r.Price)
	require.Equal(t, int64(120), r.Change)
	require.InDelta(t, 1.23, r.ChangeRate, 1e-9)
}

func TestExtract_HeadlineWithoutDigitsFallsThrough(t *testing.T) {
	doc := `<html><body>
<p class="no_today"><span class="blind">loading</span></p>
<span class="blind">3,400</span>
<span class="blind">55</span>
<span class="blind">1.64%</span>
</body></html>`
	r, err := Extract(doc)
	require.NoError(t, err)
	require.Equal(t, int64(3400), r.Price)
}

func TestExtract_NoPriceAnywhere(t *testing.T) {
	_, err := Extract(docEmpty)
	require.ErrorIs(t, err, ErrNoPrice)
}

func TestExtract_ChangeScanSkipsFirstAndLastLabels(t *testing.T) {
	// The only sub-price number sits in the last label and must be ignored.
	doc := `<html><body>
<span class="blind">50,000</span>
<span class="blind">high</span>
<span class="blind">900</span>
</body></html>`
	r, err := Extract(doc)
	require.NoError(t, err)
	require.Equal(t, int64(50000), r.Price)
	require.Equal(t, int64(0), r.Change)
}

func TestExtract_ChangeCandidateMustBeBelowPrice(t *testing.T) {
	// 80,000 exceeds the price and must not bind as the change.
	doc := `<html><body>
<span class="blind">50,000</span>
<span class="blind">80,000</span>
<span class="blind">700</span>
<span class="blind">1.42%</span>
<span class="blind">end</span>
</body></html>`
	r, err := Extract(doc)
	require.NoError(t, err)
	require.Equal(t, int64(700), r.Change)
	require.InDelta(t, 1.42, r.ChangeRate, 1e-9)
}

func TestExtract_RateSignFollowsChangeNotLabelText(t *testing.T) {
	// The percent label claims +, but the change block says down.
	doc := `<html><body>
<p class="no_today"><span class="blind">30,000</span></p>
<em class="no_down"><span class="blind">450</span></em>
<span class="blind">+1.50%</span>
<span class="blind">volume</span>
</body></html>`
	r, err := Extract(doc)
	require.NoError(t, err)
	require.Equal(t, int64(-450), r.Change)
	require.InDelta(t, -1.50, r.ChangeRate, 1e-9)
}

func TestExtract_DecreaseMarkerIsCaseInsensitive(t *testing.T) {
	doc := `<html><body>
<p class="no_today"><span class="blind">30,000</span></p>
<em class="ico MINUS"><span class="blind">450</span></em>
<span class="blind">1.50%</span>
<span class="blind">volume</span>
</body></html>`
	r, err := Extract(doc)
	require.NoError(t, err)
	require.Equal(t, int64(-450), r.Change)
}

func TestExtract_Deterministic(t *testing.T) {
	first, err := Extract(docDown)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Extract(docDown)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}
