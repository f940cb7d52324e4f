// Package auth implements the GitHub OAuth handshake and opaque session
// tokens.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. Frontend calls GET /auth/github/start → gets GitHub's authorize URL
//  2. Browser visits GitHub, user approves, GitHub calls back with a code
//  3. Server exchanges the code for an access token (server-to-server)
//  4. Server fetches the user's profile and primary email from the GitHub API
//  5. Server upserts the developer, mints an opaque session token, and sends
//     the browser back to the frontend with that token
//  6. Subsequent requests carry the token in the X-Session-Token header
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubUser is the portion of the GitHub /user API response we mirror into
// a developer profile. GitHub returns a much larger object — we only
// unmarshal the fields we persist.
//
// GitHub API docs: https://docs.github.com/en/rest/users/users#get-the-authenticated-user
type GitHubUser struct {
	Login           string `json:"login"`
	Name            string `json:"name"`
	Email           string `json:"email"` // primary public email, often hidden
	AvatarURL       string `json:"avatar_url"`
	Bio             string `json:"bio"`
	Company         string `json:"company"`
	Location        string `json:"location"`
	Blog            string `json:"blog"`
	TwitterUsername string `json:"twitter_username"`
	HTMLURL         string `json:"html_url"`
	PublicRepos     int    `json:"public_repos"`
}

// githubEmail is one entry of the /user/emails response.
type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub Authorization
// Code flow. The code-for-token exchange happens server-to-server with the
// client secret; the access token never reaches the browser.
type GitHubProvider struct {
	config *oauth2.Config

	// apiBaseURL is https://api.github.com except in tests, where it points
	// at an httptest server.
	apiBaseURL string
}

// NewGitHubProvider creates a GitHubProvider with the given credentials.
//
// callbackURL must exactly match the "Authorization callback URL" of the
// OAuth app registered at https://github.com/settings/developers.
//
// Scopes:
//   - "read:user"  — the user's profile (login, avatar, bio, ...)
//   - "user:email" — the user's email addresses, including private ones
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiBaseURL: "https://api.github.com",
	}
}

// AuthURL returns the GitHub authorization URL for the given CSRF state.
// The caller stores the state in a short-lived cookie and verifies it when
// GitHub calls back.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: trades the authorization code for the
// GitHub user's profile and primary email.
//
// Steps:
//  1. Exchange the code for an OAuth access token (server-to-server)
//  2. GET /user with the token for the profile
//  3. GET /user/emails for the primary email — "user:email" scope exposes
//     addresses the profile hides
//
// An /user/emails failure degrades to an empty email instead of failing the
// login; plenty of valid GitHub accounts expose no address at all.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that adds the
	// "Authorization: Bearer <token>" header to every request.
	client := p.config.Client(ctx, oauthToken)

	ghUser, err := p.fetchUser(client)
	if err != nil {
		return nil, err
	}

	if email := p.fetchPrimaryEmail(client); email != "" {
		ghUser.Email = email
	}

	return ghUser, nil
}

func (p *GitHubProvider) fetchUser(client *http.Client) (*GitHubUser, error) {
	resp, err := client.Get(p.apiBaseURL + "/user")
	if err != nil {
		return nil, fmt.Errorf("auth: calling GitHub /user API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: GitHub /user API returned status %d", resp.StatusCode)
	}

	var ghUser GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&ghUser); err != nil {
		return nil, fmt.Errorf("auth: decoding GitHub /user response: %w", err)
	}

	if ghUser.Login == "" {
		return nil, fmt.Errorf("auth: GitHub returned a user with no login")
	}

	return &ghUser, nil
}

// fetchPrimaryEmail returns the primary email, the first listed address if
// none is marked primary, or "" if the lookup fails or the list is empty.
func (p *GitHubProvider) fetchPrimaryEmail(client *http.Client) string {
	resp, err := client.Get(p.apiBaseURL + "/user/emails")
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var emails []githubEmail
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return ""
	}
	if len(emails) == 0 {
		return ""
	}

	for _, e := range emails {
		if e.Primary {
			return e.Email
		}
	}
	return emails[0].Email
}
