package api

// AccountDumpRequest is the payload for fetching an account dump.
type AccountDumpRequest struct {
	GUID     string `json:"guid"`
	Password string `json:"password"`
}

// LaunchRequest is the payload for launching the game client.
type LaunchRequest struct {
	ExaltPath   string `json:"exaltPath"`
	DeviceToken string `json:"deviceToken"`
	GUID        string `json:"guid"`
	Password    string `json:"password"`
}
