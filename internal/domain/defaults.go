package domain

import "time"

// DefaultTemplateID identifies the template seeded into empty storage.
const DefaultTemplateID = "default-forex"

// defaultTemplateModified is fixed so repeated reads of empty storage are equal.
var defaultTemplateModified = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// DefaultTemplate returns the template shown when none have been saved.
func DefaultTemplate() EmailTemplate {
	return EmailTemplate{
		ID:           DefaultTemplateID,
		Name:         "Forex Broker Award Invitation",
		Subject:      "Exclusive Invitation: Global Forex Excellence Awards 2024",
		HTMLContent:  defaultTemplateHTML,
		LastModified: defaultTemplateModified,
	}
}

// DefaultSmtpConfig returns the settings used before any have been saved.
func DefaultSmtpConfig() SmtpConfig {
	return SmtpConfig{
		Host:       "smtp.gmail.com",
		Port:       587,
		FromName:   "My Company",
		Encryption: EncryptionTLS,
	}
}

const defaultTemplateHTML = `<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; border: 1px solid #ddd; border-radius: 8px; overflow: hidden; }
  .header { background-color: #1e3a8a; color: white; padding: 20px; text-align: center; }
  .content { padding: 30px; background-color: #fff; }
  .btn { display: inline-block; background-color: #d97706; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px; font-weight: bold; margin-top: 20px; }
  .footer { background-color: #f8fafc; padding: 20px; text-align: center; font-size: 12px; color: #666; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Global Forex Awards 2024</h1>
    </div>
    <div class="content">
      <h2>Dear Broker Partner,</h2>
      <p>We are delighted to nominate your firm for the <strong>"Best Emerging Broker"</strong> category at the upcoming Global Forex Excellence Awards.</p>
      <p>Your commitment to transparency and user experience has set a new standard in the industry.</p>
      <div style="text-align: center;">
        <a href="#" class="btn">Confirm Your Nomination</a>
      </div>
    </div>
    <div class="footer">
      <p>&copy; 2024 Forex Awards Committee. All rights reserved.</p>
      <p>123 Financial District, London, UK</p>
    </div>
  </div>
</body>
</html>`
