package services

import "phishguard/internal/domain/models"

// Sample is a built-in example input
type Sample struct {
	Name        string             `json:"name"`
	ContentType models.ContentType `json:"content_type"`
	Content     string             `json:"content"`
}

// Samples returns the built-in example inputs, one per verdict for each content type
func Samples() []Sample {
	return []Sample{
		{Name: "legitimate-url", ContentType: models.ContentTypeURL, Content: "https://firebase.google.com/docs/genkit"},
		{Name: "suspicious-url", ContentType: models.ContentTypeURL, Content: "http://secure-bank-verify.com-login.tk/update.php?user=account&verify=true&session=x7h2k9"},
		{Name: "phishing-url", ContentType: models.ContentTypeURL, Content: "http://123.45.67.89/wp-admin/login.php?redirect_to=https://official-site.com"},
		{Name: "legitimate-message", ContentType: models.ContentTypeMessage, Content: "Your order #12345 has been shipped! Track your package here: [link to official courier website]. We hope you enjoy your purchase!"},
		{Name: "suspicious-message", ContentType: models.ContentTypeMessage, Content: "Hi, its your friend from work. I lost my phone, can you send me your number and email? I need to update my contacts."},
		{Name: "phishing-message", ContentType: models.ContentTypeMessage, Content: "URGENT: Your bank account has been compromised. Click here http://bit.ly/2s3d4f5 to verify your identity immediately or your account will be suspended. You must act now!"},
	}
}

// SampleByName returns the sample with the given name
func SampleByName(name string) (Sample, bool) {
	for _, s := range Samples() {
		if s.Name == name {
			return s, true
		}
	}
	return Sample{}, false
}
