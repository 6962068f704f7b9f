package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Gateway query parameter names.
const (
	paramVersion        = "vnp_Version"
	paramCommand        = "vnp_Command"
	paramMerchant       = "vnp_TmnCode"
	paramAmount         = "vnp_Amount"
	paramCurrency       = "vnp_CurrCode"
	paramTxnRef         = "vnp_TxnRef"
	paramOrderInfo      = "vnp_OrderInfo"
	paramOrderType      = "vnp_OrderType"
	paramLocale         = "vnp_Locale"
	paramReturnURL      = "vnp_ReturnUrl"
	paramIPAddr         = "vnp_IpAddr"
	paramCreateDate     = "vnp_CreateDate"
	paramExpireDate     = "vnp_ExpireDate"
	paramResponseCode   = "vnp_ResponseCode"
	paramTxnStatus      = "vnp_TransactionStatus"
	paramSecureHash     = "vnp_SecureHash"
	paramSecureHashType = "vnp_SecureHashType"
)

const (
	gatewayVersion = "2.1.0"
	timeLayout     = "20060102150405"
	codeSuccess    = "00"
)

// gatewayZone is the fixed UTC+7 zone the gateway expects timestamps in.
var gatewayZone = time.FixedZone("ICT", 7*60*60)

// ErrBadSignature is returned when a callback's secure hash does not match.
var ErrBadSignature = errors.New("payment callback signature mismatch")

// GatewayConfig describes the merchant account at the payment gateway.
type GatewayConfig struct {
	URL          string
	MerchantCode string
	HashSecret   string
	ReturnURL    string
	Expiry       time.Duration
}

// Gateway builds signed redirect URLs and verifies the gateway's callbacks.
type Gateway struct {
	cfg GatewayConfig
}

// NewGateway returns a Gateway for cfg. URL and HashSecret are required.
func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	if cfg.URL == "" || cfg.HashSecret == "" {
		return nil, errors.New("payment gateway url and hash secret are required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, err
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = 15 * time.Minute
	}
	return &Gateway{cfg: cfg}, nil
}

// Checkout is one payment to send the member to.
type Checkout struct {
	TxnRef    string
	Amount    int64
	OrderInfo string
	ClientIP  string
	CreatedAt time.Time
}

// RedirectURL returns the signed gateway URL for c.
func (g *Gateway) RedirectURL(c Checkout) string {
	created := c.CreatedAt.In(gatewayZone)
	v := url.Values{}
	v.Set(paramVersion, gatewayVersion)
	v.Set(paramCommand, "pay")
	v.Set(paramMerchant, g.cfg.MerchantCode)
	v.Set(paramAmount, strconv.FormatInt(c.Amount*100, 10))
	v.Set(paramCurrency, "VND")
	v.Set(paramTxnRef, c.TxnRef)
	v.Set(paramOrderInfo, c.OrderInfo)
	v.Set(paramOrderType, "other")
	v.Set(paramLocale, "vn")
	v.Set(paramReturnURL, g.cfg.ReturnURL)
	v.Set(paramIPAddr, c.ClientIP)
	v.Set(paramCreateDate, created.Format(timeLayout))
	v.Set(paramExpireDate, created.Add(g.cfg.Expiry).Format(timeLayout))

	query := canonicalQuery(v)
	return g.cfg.URL + "?" + query + "&" + paramSecureHash + "=" + g.sign(query)
}

// Callback is a verified gateway return.
type Callback struct {
	TxnRef string
	Amount int64
	Paid   bool
}

// Verify checks the secure hash of a gateway return and decodes it.
func (g *Gateway) Verify(v url.Values) (Callback, error) {
	got := v.Get(paramSecureHash)
	signed := url.Values{}
	for k, vals := range v {
		if strings.HasPrefix(k, "vnp_") && k != paramSecureHash && k != paramSecureHashType {
			signed[k] = vals
		}
	}
	want := g.sign(canonicalQuery(signed))
	if got == "" || !hmac.Equal([]byte(strings.ToLower(got)), []byte(want)) {
		return Callback{}, ErrBadSignature
	}

	amount, err := strconv.ParseInt(v.Get(paramAmount), 10, 64)
	if err != nil {
		return Callback{}, errors.New("payment callback has no valid amount")
	}
	return Callback{
		TxnRef: v.Get(paramTxnRef),
		Amount: amount / 100,
		Paid:   v.Get(paramResponseCode) == codeSuccess && v.Get(paramTxnStatus) == codeSuccess,
	}, nil
}

func (g *Gateway) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(g.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// canonicalQuery encodes v with keys in byte order and empty values dropped,
// which is the form the gateway signs.
func canonicalQuery(v url.Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		if v.Get(k) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v.Get(k)))
	}
	return b.String()
}
