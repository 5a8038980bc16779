package service

import "fmt"

func greetingName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}

func confirmationEmailTemplate(name, confirmURL, appName string) (string, string) {
	subject := fmt.Sprintf("Confirm your email for %s", appName)
	body := fmt.Sprintf(`Hi %s,

Thanks for signing up. Please confirm your email address to finish creating your account:
%s

This link expires in 24 hours and can only be used once.

If you didn't sign up, you can ignore this email.

Best,
The %s Team`, greetingName(name), confirmURL, appName)

	return subject, body
}

func welcomeEmailTemplate(name, dashboardURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi %s,

Your email is verified and your account is active.

An admin will pair you with an accountability partner for the week. Your dashboard will take you to your room once that happens:
%s

Best,
The %s Team`, greetingName(name), dashboardURL, appName)

	return subject, body
}

func pairingEmailTemplate(name, partnerName, weekLabel, roomURL, appName string) (string, string) {
	subject := fmt.Sprintf("Your %s partner for %s", appName, weekLabel)
	body := fmt.Sprintf(`Hi %s,

You've been paired with %s for the week of %s.

Set a few goals, check in as you make progress and leave each other a comment:
%s

Best,
The %s Team`, greetingName(name), partnerName, weekLabel, roomURL, appName)

	return subject, body
}
