package models

type OAuthCallbackQuery struct {
	Code  string `query:"code"`
	State string `query:"state"`
	Error string `query:"error"`
}

type LoginResult struct {
	User        User
	Token       string
	RedirectURL string
}
