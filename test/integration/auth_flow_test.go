// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

//go:build integration

package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

type apiResponse struct {
	Status int
	Body   string
}

func post(path, body string) apiResponse {
	resp, err := http.Post(env.api.URL+path, "application/json", strings.NewReader(body))
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close() //nolint:errcheck // test helper

	raw, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return apiResponse{Status: resp.StatusCode, Body: string(raw)}
}

type signInBody struct {
	User struct {
		ID        int64   `json:"id"`
		Email     string  `json:"email"`
		Password  *string `json:"password"`
		CreatedAt *string `json:"createdAt"`
		UpdatedAt *string `json:"updatedAt"`
	} `json:"user"`
	Token string `json:"token"`
	Name  string `json:"name"`
}

func decodeSignIn(resp apiResponse) signInBody {
	var out signInBody
	Expect(json.Unmarshal([]byte(resp.Body), &out)).To(Succeed())
	return out
}

func strPtr(s string) *string { return &s }

var _ = Describe("Email and password", func() {
	BeforeEach(func() {
		truncate()
	})

	It("signs up and then signs in with the same credentials", func() {
		created := post("/users", `{"email":"ada@example.com","password":"hunter2"}`)
		Expect(created.Status).To(Equal(http.StatusCreated))
		Expect(created.Body).NotTo(ContainSubstring("password"))

		resp := post("/auth/sign-in", `{"email":"ada@example.com","password":"hunter2"}`)
		Expect(resp.Status).To(Equal(http.StatusOK))

		body := decodeSignIn(resp)
		Expect(body.User.Email).To(Equal("ada@example.com"))
		Expect(body.User.Password).To(BeNil())
		Expect(body.User.CreatedAt).To(BeNil(), "sign-in returns only id and email")
		Expect(body.Token).NotTo(BeEmpty())

		userID, err := env.issuer.Parse(body.Token)
		Expect(err).NotTo(HaveOccurred())
		Expect(userID).To(Equal(body.User.ID))
		Expect(sessionCount(body.User.ID)).To(Equal(1))
	})

	It("creates a new session on every sign-in", func() {
		Expect(post("/users", `{"email":"ada@example.com","password":"hunter2"}`).Status).To(Equal(http.StatusCreated))

		first := decodeSignIn(post("/auth/sign-in", `{"email":"ada@example.com","password":"hunter2"}`))
		second := decodeSignIn(post("/auth/sign-in", `{"email":"ada@example.com","password":"hunter2"}`))

		Expect(first.Token).NotTo(Equal(second.Token))
		Expect(sessionCount(first.User.ID)).To(Equal(2))
	})

	It("rejects a wrong password with an empty 401", func() {
		Expect(post("/users", `{"email":"ada@example.com","password":"hunter2"}`).Status).To(Equal(http.StatusCreated))

		resp := post("/auth/sign-in", `{"email":"ada@example.com","password":"wrong"}`)
		Expect(resp.Status).To(Equal(http.StatusUnauthorized))
		Expect(resp.Body).To(MatchJSON(`{}`))
	})

	It("rejects an unknown email with the same response as a wrong password", func() {
		resp := post("/auth/sign-in", `{"email":"nobody@example.com","password":"hunter2"}`)
		Expect(resp.Status).To(Equal(http.StatusUnauthorized))
		Expect(resp.Body).To(MatchJSON(`{}`))
	})

	It("treats email lookups as case-sensitive", func() {
		Expect(post("/users", `{"email":"ada@example.com","password":"hunter2"}`).Status).To(Equal(http.StatusCreated))

		resp := post("/auth/sign-in", `{"email":"ADA@example.com","password":"hunter2"}`)
		Expect(resp.Status).To(Equal(http.StatusUnauthorized))
	})

	It("refuses a duplicate sign-up", func() {
		Expect(post("/users", `{"email":"ada@example.com","password":"hunter2"}`).Status).To(Equal(http.StatusCreated))

		resp := post("/users", `{"email":"ada@example.com","password":"other"}`)
		Expect(resp.Status).To(Equal(http.StatusConflict))
		Expect(resp.Body).To(MatchJSON(`{"error":"AUTH_EMAIL_TAKEN"}`))
	})
})

var _ = Describe("GitHub login", func() {
	BeforeEach(func() {
		truncate()
	})

	It("provisions a first-time user and returns only id and email", func() {
		env.github.register("code-new", "grace@example.com", strPtr("Grace Hopper"))

		resp := post("/auth/github", `{"code":"code-new"}`)
		Expect(resp.Status).To(Equal(http.StatusOK))

		body := decodeSignIn(resp)
		Expect(body.User.Email).To(Equal("grace@example.com"))
		Expect(body.User.CreatedAt).To(BeNil())
		Expect(body.Name).To(Equal("Grace Hopper"))
		Expect(sessionCount(body.User.ID)).To(Equal(1))

		user, err := env.Users.GetByEmail(env.ctx, "grace@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(user.PasswordHash).To(HavePrefix("$2"), "placeholder password is stored hashed")
	})

	It("returns the full profile to a returning user without creating a second account", func() {
		env.github.register("code-a", "grace@example.com", strPtr("Grace Hopper"))
		env.github.register("code-b", "grace@example.com", strPtr("Grace Hopper"))

		first := decodeSignIn(post("/auth/github", `{"code":"code-a"}`))
		resp := post("/auth/github", `{"code":"code-b"}`)
		Expect(resp.Status).To(Equal(http.StatusOK))

		second := decodeSignIn(resp)
		Expect(second.User.ID).To(Equal(first.User.ID))
		Expect(second.User.CreatedAt).NotTo(BeNil())
		Expect(second.User.UpdatedAt).NotTo(BeNil())
		Expect(second.User.Password).To(BeNil())
		Expect(sessionCount(first.User.ID)).To(Equal(2))

		var users int
		Expect(env.pool.QueryRow(env.ctx, "SELECT count(*) FROM users").Scan(&users)).To(Succeed())
		Expect(users).To(Equal(1))
	})

	It("logs in an existing email and password account", func() {
		Expect(post("/users", `{"email":"ada@example.com","password":"hunter2"}`).Status).To(Equal(http.StatusCreated))
		env.github.register("code-ada", "ada@example.com", strPtr("Ada Lovelace"))

		resp := post("/auth/github", `{"code":"code-ada"}`)
		Expect(resp.Status).To(Equal(http.StatusOK))

		// The local password keeps working.
		Expect(post("/auth/sign-in", `{"email":"ada@example.com","password":"hunter2"}`).Status).To(Equal(http.StatusOK))
	})

	It("rejects an unknown code with an empty 401", func() {
		resp := post("/auth/github", `{"code":"never-issued"}`)
		Expect(resp.Status).To(Equal(http.StatusUnauthorized))
		Expect(resp.Body).To(MatchJSON(`{}`))
	})

	It("logs in a user whose GitHub account has no display name", func() {
		env.github.register("code-anon", "anon@example.com", nil)

		resp := post("/auth/github", `{"code":"code-anon"}`)
		Expect(resp.Status).To(Equal(http.StatusOK))
		Expect(resp.Body).NotTo(ContainSubstring(`"name"`))

		body := decodeSignIn(resp)
		Expect(body.User.Email).To(Equal("anon@example.com"))
		Expect(sessionCount(body.User.ID)).To(Equal(1))
	})

	It("fails when the GitHub profile has no name key", func() {
		env.github.registerIdentity("code-broken", githubIdentity{Email: "broken@example.com", OmitName: true})

		resp := post("/auth/github", `{"code":"code-broken"}`)
		Expect(resp.Status).To(Equal(http.StatusUnauthorized))

		var users int
		Expect(env.pool.QueryRow(env.ctx, "SELECT count(*) FROM users").Scan(&users)).To(Succeed())
		Expect(users).To(BeZero())
	})
})
