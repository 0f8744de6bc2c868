// Command authorize runs the OAuth installed-app flow once and prints a bearer
// token for calling the report API locally.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kapu/yt-analytics-go/internal/service/youtube"
	"github.com/kapu/yt-analytics-go/internal/util"
	"go.uber.org/zap"
)

func main() {
	credentialsFile := flag.String("credentials", "credentials.json", "OAuth client credentials file")
	tokenFile := flag.String("token", "token.json", "file the token is stored in")
	reauth := flag.Bool("reauth", false, "ignore the stored token and authorize again")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	logger, err := util.NewLogger(*logLevel, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	authorizer, err := youtube.NewAuthorizer(*credentialsFile, *tokenFile, logger)
	if err != nil {
		logger.Error("Failed to load OAuth credentials", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if !*reauth {
		if token, err := authorizer.AccessToken(ctx); err == nil {
			fmt.Println(token)
			return
		}
	}

	fmt.Fprintln(os.Stderr, "=== YouTube Analytics Authorization ===")
	fmt.Fprintln(os.Stderr, "Open the following link in your browser:")
	fmt.Fprintln(os.Stderr, authorizer.AuthCodeURL("state-token"))
	fmt.Fprintln(os.Stderr, "\nAfter authorization, enter the code here:")

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		logger.Error("Unable to read authorization code", zap.Error(err))
		os.Exit(1)
	}

	token, err := authorizer.Exchange(ctx, code)
	if err != nil {
		logger.Error("Authorization failed", zap.Error(err))
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Token saved to %s\n", *tokenFile)
	fmt.Println(token.AccessToken)
}
