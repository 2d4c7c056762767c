// Package api はHTTPレスポンスで共通して使う型を定義します。
package api

// ErrorResponse はすべてのエラーレスポンスの形式です。クライアントはerrorをトーストで表示します。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は本文を持たない成功レスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}

// RedirectResponse は遷移先を伴う成功レスポンスです。
type RedirectResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}
