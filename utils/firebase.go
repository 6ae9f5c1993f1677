// utils/firebase.go
package utils

import (
	"context"
	"log"

	"ingresso/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var FCMClient *messaging.Client

// FirebaseInit initializes the Firebase App and Messaging client. Push
// delivery is optional; without credentials the client stays nil and pushes
// are skipped.
func FirebaseInit() {
	credsFile := config.AppConfig.FirebaseCredentialsFile
	if credsFile == "" {
		credsFile = config.FirebaseServiceAccountKeyPath
	}

	ctx := context.Background()
	opt := option.WithCredentialsFile(credsFile)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		log.Printf("firebase: error initializing app, push disabled: %v", err)
		return
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("firebase: error getting Messaging client, push disabled: %v", err)
		return
	}

	FCMClient = client
}
