// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

//go:build integration

package store_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/drivent/drivent/internal/store"
)

var _ = Describe("Migrator", Ordered, func() {
	var (
		migrator *store.Migrator
		pool     *pgxpool.Pool
		ctx      context.Context
	)

	BeforeAll(func() {
		ctx = context.Background()

		var err error
		migrator, err = store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())

		pool, err = store.Connect(ctx, connStr, 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		pool.Close()
		Expect(migrator.Close()).To(Succeed())
	})

	It("starts at version zero", func() {
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(BeZero())
		Expect(dirty).To(BeFalse())
	})

	It("applies every migration", func() {
		Expect(migrator.Up()).To(Succeed())

		status, err := migrator.Status()
		Expect(err).NotTo(HaveOccurred())
		Expect(status.Pending).To(BeEmpty())
		Expect(status.Applied).To(HaveLen(2))
		Expect(status.Current).To(Equal(uint(2)))
	})

	It("treats a second Up as a no-op", func() {
		Expect(migrator.Up()).To(Succeed())
	})

	It("enforces unique emails and tokens but not one session per user", func() {
		var userID int64
		Expect(pool.QueryRow(ctx,
			`INSERT INTO users (email, password) VALUES ('a@x.com', 'h') RETURNING id`).Scan(&userID)).To(Succeed())

		_, err := pool.Exec(ctx, `INSERT INTO users (email, password) VALUES ('a@x.com', 'h')`)
		var pgErr *pgconn.PgError
		Expect(errors.As(err, &pgErr)).To(BeTrue())
		Expect(pgErr.Code).To(Equal(pgerrcode.UniqueViolation))

		_, err = pool.Exec(ctx, `INSERT INTO sessions (id, token, user_id) VALUES ('s1', 't1', $1), ('s2', 't2', $1)`, userID)
		Expect(err).NotTo(HaveOccurred())

		_, err = pool.Exec(ctx, `INSERT INTO sessions (id, token, user_id) VALUES ('s3', 't1', $1)`, userID)
		Expect(err).To(HaveOccurred())

		_, err = pool.Exec(ctx, `DELETE FROM users`)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rolls back one step and re-applies it", func() {
		Expect(migrator.Steps(-1)).To(Succeed())
		version, _, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(1)))

		Expect(migrator.Steps(1)).To(Succeed())
		version, _, err = migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(2)))
	})

	It("rolls everything back with Down", func() {
		Expect(migrator.Down()).To(Succeed())
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(BeZero())
		Expect(dirty).To(BeFalse())
	})

	It("forces a version without running migrations", func() {
		Expect(migrator.Force(1)).To(Succeed())
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(1)))
		Expect(dirty).To(BeFalse())
	})
})
