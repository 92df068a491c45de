package common

// DefaultAccount is the account used when a request names none.
const DefaultAccount = "default"

// GetAccountFromArgs extracts the account name from request arguments,
// falling back to DefaultAccount. Tools accept an optional "account" argument
// so one server instance can serve several authorized Google accounts.
func GetAccountFromArgs(args map[string]interface{}) string {
	if account, ok := args["account"].(string); ok && account != "" {
		return account
	}
	return DefaultAccount
}
