/*
Package clients provides a Go client for the dashboard HTTP API.

DashboardClient performs the wallet login (nonce request, EIP-191 signature
with the wallet key, verification) and then attaches the returned session
token to every call:

	client := clients.NewDashboardClient("http://localhost:8080")
	if _, err := client.Login(ctx, walletKey); err != nil {
		return err
	}
	file, err := client.Upload(ctx, "report.pdf", reader)

Non-2xx responses are returned as *APIError carrying the status code and the
server's error message.
*/
package clients
