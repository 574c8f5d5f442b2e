package conversion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/currency-converter/pkg/domain"
	"github.com/amirasaad/currency-converter/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MockRates is a mock implementation of provider.Rates for testing
type MockRates struct {
	mock.Mock
}

func (m *MockRates) FetchCurrencies(ctx context.Context) (domain.Catalog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Catalog), args.Error(1)
}

func (m *MockRates) FetchHistoricalRates(
	ctx context.Context,
	date, base string,
) (domain.RateTable, error) {
	args := m.Called(ctx, date, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.RateTable), args.Error(1)
}

func (m *MockRates) Name() string {
	return "mock"
}

type memKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	setErr error
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

var (
	jan1    = time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	catalog = domain.Catalog{
		"USD": {Code: "USD", Name: "US Dollar", Symbol: "$"},
		"EUR": {Code: "EUR", Name: "Euro", Symbol: "€"},
	}
)

type ControllerTestSuite struct {
	suite.Suite
	rates *MockRates
	kv    *memKV
	ctrl  *Controller
	ctx   context.Context
}

func (s *ControllerTestSuite) SetupTest() {
	s.rates = new(MockRates)
	s.kv = &memKV{data: map[string][]byte{}}
	s.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ids := 0
	s.ctrl = New(s.rates, s.kv, logger, WithIDGenerator(func() string {
		ids++
		return "id-" + string(rune('0'+ids))
	}))
}

func (s *ControllerTestSuite) TearDownTest() {
	s.ctrl.Close()
}

func (s *ControllerTestSuite) fillForm(from, to string, amount float64, date time.Time) {
	s.ctrl.SetFromCurrency(from)
	s.ctrl.SetToCurrency(to)
	s.ctrl.SetAmount(amount)
	s.ctrl.SetDate(date)
}

func (s *ControllerTestSuite) history() []domain.ConversionResult {
	return store.Read(s.ctx, s.ctrl.logger, s.kv, domain.HistoryKey, []domain.ConversionResult{})
}

func (s *ControllerTestSuite) TestNewControllerStartsLoading() {
	st := s.ctrl.State()
	s.True(st.IsLoading)
	s.False(st.Converting)
	s.Empty(st.Error)
	s.Nil(st.Currencies)
	s.Nil(st.ConvertedResult)
}

func (s *ControllerTestSuite) TestInitialize_Success() {
	s.rates.On("FetchCurrencies", mock.Anything).Return(catalog, nil).Once()

	s.Require().NoError(s.ctrl.Initialize(s.ctx))

	st := s.ctrl.State()
	s.False(st.IsLoading)
	s.Empty(st.Error)
	s.Equal([]string{"EUR", "USD"}, st.Currencies.Codes())
	s.rates.AssertExpectations(s.T())
}

func (s *ControllerTestSuite) TestInitialize_Failure() {
	s.rates.On("FetchCurrencies", mock.Anything).
		Return(nil, &domain.TransportError{Op: "fetch currencies", StatusCode: 503, Err: errors.New("down")}).Once()

	err := s.ctrl.Initialize(s.ctx)
	s.ErrorIs(err, domain.ErrTransport)

	st := s.ctrl.State()
	s.False(st.IsLoading)
	s.Equal(MsgLoadCurrencies, st.Error)
	s.Nil(st.Currencies)
}

func (s *ControllerTestSuite) TestInitialize_RetryClearsError() {
	s.rates.On("FetchCurrencies", mock.Anything).Return(nil, &domain.TransportError{Err: errors.New("down")}).Once()
	s.rates.On("FetchCurrencies", mock.Anything).Return(catalog, nil).Once()

	s.Error(s.ctrl.Initialize(s.ctx))
	s.NoError(s.ctrl.Initialize(s.ctx))
	s.Empty(s.ctrl.State().Error)
}

func (s *ControllerTestSuite) TestCanSubmit_TruthTable() {
	amount := func(v float64) *float64 { return &v }
	str := func(v string) *string { return &v }
	date := jan1

	tests := []struct {
		name string
		form domain.ConversionForm
		want bool
	}{
		{"complete", domain.ConversionForm{FromCurrency: str("USD"), ToCurrency: str("EUR"), Amount: amount(1), Date: &date}, true},
		{"same currencies", domain.ConversionForm{FromCurrency: str("USD"), ToCurrency: str("USD"), Amount: amount(1), Date: &date}, true},
		{"empty", domain.ConversionForm{}, false},
		{"no from", domain.ConversionForm{ToCurrency: str("EUR"), Amount: amount(1), Date: &date}, false},
		{"blank from", domain.ConversionForm{FromCurrency: str(""), ToCurrency: str("EUR"), Amount: amount(1), Date: &date}, false},
		{"no to", domain.ConversionForm{FromCurrency: str("USD"), Amount: amount(1), Date: &date}, false},
		{"no amount", domain.ConversionForm{FromCurrency: str("USD"), ToCurrency: str("EUR"), Date: &date}, false},
		{"zero amount", domain.ConversionForm{FromCurrency: str("USD"), ToCurrency: str("EUR"), Amount: amount(0), Date: &date}, false},
		{"negative amount", domain.ConversionForm{FromCurrency: str("USD"), ToCurrency: str("EUR"), Amount: amount(-1), Date: &date}, false},
		{"NaN amount", domain.ConversionForm{FromCurrency: str("USD"), ToCurrency: str("EUR"), Amount: amount(math.NaN()), Date: &date}, false},
		{"no date", domain.ConversionForm{FromCurrency: str("USD"), ToCurrency: str("EUR"), Amount: amount(1)}, false},
		{"zero date", domain.ConversionForm{FromCurrency: str("USD"), ToCurrency: str("EUR"), Amount: amount(1), Date: &time.Time{}}, false},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.ctrl.SetForm(tt.form)
			s.Equal(tt.want, s.ctrl.CanSubmit())
		})
	}
}

func (s *ControllerTestSuite) TestCanSubmit_FalseWhileConverting() {
	release := make(chan struct{})
	started := make(chan struct{})
	s.rates.On("FetchHistoricalRates", mock.Anything, "2024-01-01", "USD").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(domain.RateTable{"2024-01-01": {"EUR": 1.1}}, nil).Once()
	s.fillForm("USD", "EUR", 100, jan1)
	s.True(s.ctrl.CanSubmit())

	done := make(chan error, 1)
	go func() {
		_, err := s.ctrl.Submit(s.ctx)
		done <- err
	}()
	<-started

	s.True(s.ctrl.State().Converting)
	s.False(s.ctrl.CanSubmit())
	_, err := s.ctrl.Submit(s.ctx)
	s.ErrorIs(err, domain.ErrConversionInFlight)

	close(release)
	s.NoError(<-done)
	s.False(s.ctrl.State().Converting)
	s.True(s.ctrl.CanSubmit())
	s.rates.AssertNumberOfCalls(s.T(), "FetchHistoricalRates", 1)
}

func (s *ControllerTestSuite) TestSubmit_Success() {
	s.rates.On("FetchHistoricalRates", mock.Anything, "2024-01-01", "USD").
		Return(domain.RateTable{"2024-01-01": {"EUR": 1.1, "GBP": 0.8}}, nil).Once()
	s.fillForm("USD", "EUR", 100, jan1)

	res, err := s.ctrl.Submit(s.ctx)
	s.Require().NoError(err)
	s.InDelta(110.0, res.ConvertedAmount, 1e-9)
	s.InDelta(1.1, res.ToCurrencyRate, 1e-9)
	s.Equal("USD", res.FromCurrency)
	s.Equal("EUR", res.ToCurrency)
	s.Equal("2024-01-01", res.Date)
	s.Equal("id-1", res.ID)

	st := s.ctrl.State()
	s.False(st.Converting)
	s.Empty(st.Error)
	s.Require().NotNil(st.ConvertedResult)
	s.Equal(*res, *st.ConvertedResult)

	history := s.history()
	s.Require().Len(history, 1)
	s.Equal(*res, history[0])
}

func (s *ControllerTestSuite) TestSubmit_SameCurrencyUsesRateOne() {
	s.rates.On("FetchHistoricalRates", mock.Anything, "2024-01-01", "USD").
		Return(domain.RateTable{"2024-01-01": {"USD": 1, "EUR": 1.1}}, nil).Once()
	s.fillForm("USD", "USD", 42, jan1)

	res, err := s.ctrl.Submit(s.ctx)
	s.Require().NoError(err)
	s.InDelta(42.0, res.ConvertedAmount, 1e-9)
}

func (s *ControllerTestSuite) TestSubmit_PrependsNewestFirst() {
	s.rates.On("FetchHistoricalRates", mock.Anything, "2024-01-01", "USD").
		Return(domain.RateTable{"2024-01-01": {"EUR": 1.1, "GBP": 0.8}}, nil).Twice()

	s.fillForm("USD", "EUR", 100, jan1)
	_, err := s.ctrl.Submit(s.ctx)
	s.Require().NoError(err)
	s.ctrl.SetToCurrency("GBP")
	_, err = s.ctrl.Submit(s.ctx)
	s.Require().NoError(err)

	history := s.history()
	s.Require().Len(history, 2)
	s.Equal("GBP", history[0].ToCurrency)
	s.Equal("EUR", history[1].ToCurrency)
}

func (s *ControllerTestSuite) TestSubmit_ValidationFailure() {
	s.ctrl.SetFromCurrency("USD")
	s.ctrl.SetAmount(100)

	res, err := s.ctrl.Submit(s.ctx)
	s.Nil(res)
	s.ErrorIs(err, domain.ErrValidation)

	st := s.ctrl.State()
	s.Equal(MsgRequiredFields, st.Error)
	s.False(st.Converting)
	s.rates.AssertNotCalled(s.T(), "FetchHistoricalRates", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ControllerTestSuite) TestSubmit_TransportFailure() {
	s.seedResult()
	s.rates.On("FetchHistoricalRates", mock.Anything, "2024-01-02", "USD").
		Return(nil, &domain.TransportError{Op: "fetch historical rates", StatusCode: 500, Err: errors.New("boom")}).Once()
	s.ctrl.SetDate(jan1.AddDate(0, 0, 1))

	_, err := s.ctrl.Submit(s.ctx)
	s.ErrorIs(err, domain.ErrTransport)

	st := s.ctrl.State()
	s.Equal(MsgFetchRates, st.Error)
	s.False(st.Converting)
	s.Require().NotNil(st.ConvertedResult)
	s.Equal("2024-01-01", st.ConvertedResult.Date, "previous result stays visible")
	s.Len(s.history(), 1)
}

func (s *ControllerTestSuite) TestSubmit_MissingDate() {
	s.seedResult()
	s.rates.On("FetchHistoricalRates", mock.Anything, "2024-01-02", "USD").
		Return(domain.RateTable{"2024-01-03": {"EUR": 1.2}}, nil).Once()
	s.ctrl.SetDate(jan1.AddDate(0, 0, 1))

	_, err := s.ctrl.Submit(s.ctx)
	s.ErrorIs(err, domain.ErrDataAbsent)

	st := s.ctrl.State()
	s.Equal(MsgNoRatesForDate, st.Error)
	s.False(st.Converting)
	s.Equal("2024-01-01", st.ConvertedResult.Date)
	s.Len(s.history(), 1)
}

func (s *ControllerTestSuite) TestSubmit_MissingOrInvalidRate() {
	for name, rates := range map[string]domain.DayRates{
		"missing":  {"GBP": 0.8},
		"zero":     {"EUR": 0},
		"negative": {"EUR": -1},
		"infinite": {"EUR": math.Inf(1)},
	} {
		s.Run(name, func() {
			s.SetupTest()
			s.rates.On("FetchHistoricalRates", mock.Anything, "2024-01-01", "USD").
				Return(domain.RateTable{"2024-01-01": rates}, nil).Once()
			s.fillForm("USD", "EUR", 100, jan1)

			_, err := s.ctrl.Submit(s.ctx)
			s.ErrorIs(err, domain.ErrDataAbsent)

			st := s.ctrl.State()
			s.Equal("Exchange rate not found for EUR.", st.Error)
			s.False(st.Converting)
			s.Nil(st.ConvertedResult)
			s.Empty(s.history())
		})
	}
}

func (s *ControllerTestSuite) TestSubmit_OverflowingAmountIsRejected() {
	s.rates.On("FetchHistoricalRates", mock.Anything, "2024-01-01", "USD").
		Return(domain.RateTable{"2024-01-01": {"EUR": 10}}, nil).Once()
	s.fillForm("USD", "EUR", 1e308, jan1)

	res, err := s.ctrl.Submit(s.ctx)
	s.Nil(res)
	s.ErrorIs(err, domain.ErrValidation)

	st := s.ctrl.State()
	s.Equal(MsgOutOfRange, st.Error)
	s.False(st.Converting)
	s.Nil(st.ConvertedResult)
	s.Empty(s.history())
}

func (s *ControllerTestSuite) TestSubmit_FailingHistoryWriteStillSucceeds() {
	s.kv.setErr = errors.New("quota exceeded")
	s.rates.On("FetchHistoricalRates", mock.Anything, "2024-01-01", "USD").
		Return(domain.RateTable{"2024-01-01": {"EUR": 1.1}}, nil).Once()
	s.fillForm("USD", "EUR", 100, jan1)

	res, err := s.ctrl.Submit(s.ctx)
	s.Require().NoError(err)
	s.InDelta(110.0, res.ConvertedAmount, 1e-9)

	st := s.ctrl.State()
	s.NotNil(st.ConvertedResult)
	s.Empty(st.Error)
	s.False(st.Converting)
	s.Empty(s.history())
}

func (s *ControllerTestSuite) TestSubmit_SuccessClearsPreviousError() {
	s.ctrl.SetAmount(-1)
	_, err := s.ctrl.Submit(s.ctx)
	s.Require().Error(err)
	s.Equal(MsgRequiredFields, s.ctrl.State().Error)

	s.rates.On("FetchHistoricalRates", mock.Anything, "2024-01-01", "USD").
		Return(domain.RateTable{"2024-01-01": {"EUR": 1.1}}, nil).Once()
	s.fillForm("USD", "EUR", 100, jan1)
	_, err = s.ctrl.Submit(s.ctx)
	s.Require().NoError(err)
	s.Empty(s.ctrl.State().Error)
}

func (s *ControllerTestSuite) TestStateIsASnapshot() {
	s.fillForm("USD", "EUR", 100, jan1)
	st := s.ctrl.State()
	*st.Form.Amount = 5

	s.InDelta(100.0, *s.ctrl.State().Form.Amount, 1e-9)
}

func (s *ControllerTestSuite) TestClose_DiscardsLateResponse() {
	started := make(chan struct{})
	s.rates.On("FetchHistoricalRates", mock.Anything, "2024-01-01", "USD").
		Run(func(args mock.Arguments) {
			close(started)
			<-args.Get(0).(context.Context).Done()
		}).
		Return(domain.RateTable{"2024-01-01": {"EUR": 1.1}}, nil).Once()
	s.fillForm("USD", "EUR", 100, jan1)

	done := make(chan error, 1)
	go func() {
		_, err := s.ctrl.Submit(s.ctx)
		done <- err
	}()
	<-started
	s.ctrl.Close()

	s.ErrorIs(<-done, domain.ErrControllerClosed)
	s.Nil(s.ctrl.State().ConvertedResult)
	s.Empty(s.history())

	_, err := s.ctrl.Submit(s.ctx)
	s.ErrorIs(err, domain.ErrControllerClosed)
	s.ErrorIs(s.ctrl.Initialize(s.ctx), domain.ErrControllerClosed)
}

func (s *ControllerTestSuite) TestClose_DiscardsLateCatalog() {
	started := make(chan struct{})
	s.rates.On("FetchCurrencies", mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-args.Get(0).(context.Context).Done()
		}).
		Return(catalog, nil).Once()

	done := make(chan error, 1)
	go func() { done <- s.ctrl.Initialize(s.ctx) }()
	<-started
	s.ctrl.Close()

	s.ErrorIs(<-done, domain.ErrControllerClosed)
	s.Nil(s.ctrl.State().Currencies)
}

// seedResult runs one successful conversion for 2024-01-01.
func (s *ControllerTestSuite) seedResult() {
	s.rates.On("FetchHistoricalRates", mock.Anything, "2024-01-01", "USD").
		Return(domain.RateTable{"2024-01-01": {"EUR": 1.1}}, nil).Once()
	s.fillForm("USD", "EUR", 100, jan1)
	_, err := s.ctrl.Submit(s.ctx)
	s.Require().NoError(err)
}

func TestControllerTestSuite(t *testing.T) {
	suite.Run(t, new(ControllerTestSuite))
}

func TestMsgRateNotFound(t *testing.T) {
	assert.Equal(t, "Exchange rate not found for JPY.", MsgRateNotFound("JPY"))
}

func TestSubmit_CallerContextCancelled(t *testing.T) {
	rates := new(MockRates)
	rates.On("FetchHistoricalRates", mock.Anything, "2024-01-01", "USD").
		Return(nil, &domain.TransportError{Op: "fetch historical rates", Err: context.Canceled}).Once()
	ctrl := New(rates, &memKV{data: map[string][]byte{}}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer ctrl.Close()
	ctrl.SetFromCurrency("USD")
	ctrl.SetToCurrency("EUR")
	ctrl.SetAmount(1)
	ctrl.SetDate(jan1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ctrl.Submit(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, MsgFetchRates, ctrl.State().Error)
	assert.False(t, ctrl.State().Converting)
}
