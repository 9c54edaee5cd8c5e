// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

//go:build integration

package integration

import (
	"errors"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/drivent/drivent/internal/auth"
)

var _ = Describe("UserRepository", func() {
	BeforeEach(func() {
		truncate()
	})

	It("assigns an id and timestamps on create", func() {
		created, err := env.Users.Create(env.ctx, &auth.User{Email: "ada@example.com", PasswordHash: "$2a$04$hash"})
		Expect(err).NotTo(HaveOccurred())
		Expect(created.ID).To(BeNumerically(">", 0))
		Expect(created.CreatedAt).NotTo(BeZero())
		Expect(created.UpdatedAt).NotTo(BeZero())
	})

	It("reports a duplicate email as ErrEmailTaken", func() {
		_, err := env.Users.Create(env.ctx, &auth.User{Email: "ada@example.com", PasswordHash: "h1"})
		Expect(err).NotTo(HaveOccurred())

		_, err = env.Users.Create(env.ctx, &auth.User{Email: "ada@example.com", PasswordHash: "h2"})
		Expect(errors.Is(err, auth.ErrEmailTaken)).To(BeTrue())
	})

	It("returns credentials only from GetByEmail", func() {
		_, err := env.Users.Create(env.ctx, &auth.User{Email: "ada@example.com", PasswordHash: "stored-hash"})
		Expect(err).NotTo(HaveOccurred())

		user, err := env.Users.GetByEmail(env.ctx, "ada@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(user.PasswordHash).To(Equal("stored-hash"))
		Expect(user.CreatedAt).To(BeZero())

		profile, err := env.Users.GetProfileByEmail(env.ctx, "ada@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(profile.ID).To(Equal(user.ID))
		Expect(profile.CreatedAt).NotTo(BeZero())
	})

	It("returns ErrNotFound for an unknown email", func() {
		_, err := env.Users.GetByEmail(env.ctx, "nobody@example.com")
		Expect(errors.Is(err, auth.ErrNotFound)).To(BeTrue())

		exists, err := env.Users.ExistsByEmail(env.ctx, "nobody@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeFalse())
	})
})

var _ = Describe("SessionRepository", func() {
	BeforeEach(func() {
		truncate()
	})

	It("stores any number of sessions for one user", func() {
		user, err := env.Users.Create(env.ctx, &auth.User{Email: "ada@example.com", PasswordHash: "h"})
		Expect(err).NotTo(HaveOccurred())

		for _, token := range []string{"t1", "t2", "t3"} {
			session, err := auth.NewSession(user.ID, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(env.Sessions.Create(env.ctx, session)).To(Succeed())
		}
		Expect(sessionCount(user.ID)).To(Equal(3))
	})

	It("rejects a session for a missing user with ErrNotFound", func() {
		session, err := auth.NewSession(424242, "orphan")
		Expect(err).NotTo(HaveOccurred())

		err = env.Sessions.Create(env.ctx, session)
		Expect(errors.Is(err, auth.ErrNotFound)).To(BeTrue())
	})

	It("rejects a reused token", func() {
		user, err := env.Users.Create(env.ctx, &auth.User{Email: "ada@example.com", PasswordHash: "h"})
		Expect(err).NotTo(HaveOccurred())

		first, err := auth.NewSession(user.ID, "same-token")
		Expect(err).NotTo(HaveOccurred())
		Expect(env.Sessions.Create(env.ctx, first)).To(Succeed())

		second, err := auth.NewSession(user.ID, "same-token")
		Expect(err).NotTo(HaveOccurred())
		Expect(env.Sessions.Create(env.ctx, second)).NotTo(Succeed())
	})
})
