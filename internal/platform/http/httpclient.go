package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient はスクレイピングとフィード取得に使う http.Client を生成します。
//
// Settings:
//   - Proxy: honours HTTP_PROXY / HTTPS_PROXY
//   - Dialer.Timeout: TCP connect timeout, shorter than the default
//   - MaxIdleConns / MaxIdleConnsPerHost: a day fans out to one host at a time
//   - Client.Timeout: whole-request timeout supplied by the caller (10s for scrapers)
//
// http.DefaultClient はタイムアウトがないのでスクレイピングには使わないこと。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
