package config

// FirebaseServiceAccountKeyPath is the fallback service account JSON path used
// by the messaging client when FIREBASE_CREDENTIALS_FILE is not set.
var FirebaseServiceAccountKeyPath = "serviceAccountKey.json"
