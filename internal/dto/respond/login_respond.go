package respond

// LoginRespond 登录成功响应
type LoginRespond struct {
	Token string `json:"token"`
}

// LoginFailRespond 登录失败响应
type LoginFailRespond struct {
	Ok    int    `json:"ok"`
	Error string `json:"error"`
}
