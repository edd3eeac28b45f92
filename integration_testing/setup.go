//go:build integration_test || all_tests

package integration_testing

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/2beens/fittrack/internal"
	"github.com/2beens/fittrack/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	serverPort = 9000
	serverHost = "localhost"
)

var serverEndpoint = fmt.Sprintf("http://%s:%d", serverHost, serverPort)

type Suite struct {
	DB         *sql.DB
	PgPool     *pgxpool.Pool
	dockerPool *dockertest.Pool
	server     *internal.Server
	teardown   []func()
}

func newSuite(ctx context.Context) (_ *Suite) {
	var err error
	suite := &Suite{
		teardown: make([]func(), 0),
	}

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	suite.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not create new dockertest pool: %s", err)
	}

	// uses pool to try to connect to Docker
	if err = suite.dockerPool.Client.Ping(); err != nil {
		log.Fatalf("could not ping dockertest pool: %s", err)
	}

	redisPort, err := suite.redisSetup()
	if err != nil {
		suite.cleanup()
		log.Fatalf("failed to setup redis: %s", err.Error())
	}

	pgPort, err := suite.postgresSetup(ctx)
	if err != nil {
		suite.cleanup()
		log.Fatalf("failed to setup postgres: %s", err)
	}

	cfg := getTestConfig(redisPort, pgPort)
	suite.server, err = internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			VersionInfo:             "test-version-info",
			AdminUsername:           "adminUsername",
			AdminPasswordHash:       "adminPasswordHash",
			RedisPassword:           "",
			HoneycombTracingEnabled: false,
		},
	)
	if err != nil {
		suite.cleanup()
		log.Fatalf("new server: %s", err)
	}

	suite.server.Serve(cfg.Host, cfg.Port)

	return suite
}

func (s *Suite) cleanup() {
	if s.DB != nil {
		s.DB.Close()
	}
	if s.PgPool != nil {
		s.PgPool.Close()
	}
	for _, teardown := range s.teardown {
		teardown()
	}
	if s.server != nil {
		s.server.GracefulShutdown()
	}
}

func getTestConfig(redisPort, postgresPort string) *config.Config {
	return &config.Config{
		Host:                        serverHost,
		Port:                        serverPort,
		RedisHost:                   "localhost",
		RedisPort:                   redisPort,
		PostgresPort:                postgresPort,
		PostgresHost:                "localhost",
		PostgresDBName:              "fittrack_db",
		LoginRateLimitAllowedPerMin: 100,
		DefaultWeightKg:             70,
		DefaultWaterTargetMl:        2500,
	}
}

func (s *Suite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Name:       "redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		redisResource.Close()
	})

	redisPort := redisResource.GetPort("6379/tcp")
	return redisPort, nil
}

func (s *Suite) postgresSetup(ctx context.Context) (string, error) {
	pgResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "12",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_HOST_AUTH_METHOD=trust",
			"POSTGRES_DB=fittrack_db",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("dockerpool run postgres: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		pgResource.Close()
	})

	pgPort := pgResource.GetPort("5432/tcp")
	dsn := fmt.Sprintf("postgres://postgres@localhost:%s/fittrack_db?sslmode=disable", pgPort)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return "", fmt.Errorf("open db conn: %s", err)
	}
	s.DB = db

	res, err := db.Exec(initSQL)
	if err != nil {
		return "", fmt.Errorf("run init script: %s", err)
	}

	numRows, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("get rows affected: %s", err)
	}

	log.Printf("postgres setup result: %d\n", numRows)

	if db.Ping() != nil {
		return "", fmt.Errorf("ping db: %s", err)
	}

	s.PgPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		return "", fmt.Errorf("create pgx pool: %s", err)
	}

	return pgPort, nil
}

const initSQL = `
CREATE TABLE public.user_profile
(
    id             SERIAL PRIMARY KEY,
    user_id        INTEGER          NOT NULL UNIQUE,
    sex            VARCHAR          NOT NULL,
    date_of_birth  TIMESTAMP WITHOUT TIME ZONE NOT NULL,
    height_cm      DOUBLE PRECISION NOT NULL,
    weight_kg      DOUBLE PRECISION NOT NULL,
    activity_level VARCHAR          NOT NULL,
    goal           VARCHAR          NOT NULL,
    created_at     TIMESTAMP WITHOUT TIME ZONE NOT NULL,
    updated_at     TIMESTAMP WITHOUT TIME ZONE NOT NULL
);

ALTER TABLE public.user_profile OWNER TO postgres;

CREATE TABLE public.activity
(
    id               SERIAL PRIMARY KEY,
    user_id          INTEGER NOT NULL,
    type             VARCHAR NOT NULL,
    duration_minutes INTEGER NOT NULL,
    distance_km      DOUBLE PRECISION,
    calories_burned  INTEGER NOT NULL,
    notes            VARCHAR,
    created_at       TIMESTAMP WITHOUT TIME ZONE NOT NULL
);

ALTER TABLE public.activity OWNER TO postgres;
CREATE INDEX ix_activity_user_created_at ON public.activity (user_id, created_at);

CREATE TABLE public.biometric
(
    id             SERIAL PRIMARY KEY,
    user_id        INTEGER          NOT NULL,
    weight_kg      DOUBLE PRECISION NOT NULL,
    body_fat_pct   DOUBLE PRECISION,
    muscle_mass_kg DOUBLE PRECISION,
    waist_cm       DOUBLE PRECISION,
    notes          VARCHAR,
    recorded_at    TIMESTAMP WITHOUT TIME ZONE NOT NULL
);

ALTER TABLE public.biometric OWNER TO postgres;
CREATE INDEX ix_biometric_user_recorded_at ON public.biometric (user_id, recorded_at);

CREATE TABLE public.water_intake
(
    id          SERIAL PRIMARY KEY,
    user_id     INTEGER NOT NULL,
    milliliters INTEGER NOT NULL,
    notes       VARCHAR,
    recorded_at TIMESTAMP WITHOUT TIME ZONE NOT NULL
);

ALTER TABLE public.water_intake OWNER TO postgres;
CREATE INDEX ix_water_intake_user_recorded_at ON public.water_intake (user_id, recorded_at);

CREATE TABLE public.meal
(
    id           SERIAL PRIMARY KEY,
    user_id      INTEGER          NOT NULL,
    type         VARCHAR          NOT NULL,
    food_name    VARCHAR          NOT NULL,
    calories     INTEGER          NOT NULL,
    protein_g    DOUBLE PRECISION NOT NULL,
    carbs_g      DOUBLE PRECISION NOT NULL,
    fats_g       DOUBLE PRECISION NOT NULL,
    serving_size VARCHAR,
    notes        VARCHAR,
    logged_at    TIMESTAMP WITHOUT TIME ZONE NOT NULL
);

ALTER TABLE public.meal OWNER TO postgres;
CREATE INDEX ix_meal_user_logged_at ON public.meal (user_id, logged_at);

CREATE TABLE public.goal
(
    id            SERIAL PRIMARY KEY,
    user_id       INTEGER          NOT NULL,
    type          VARCHAR          NOT NULL,
    title         VARCHAR          NOT NULL,
    target_value  DOUBLE PRECISION NOT NULL,
    current_value DOUBLE PRECISION NOT NULL,
    unit          VARCHAR          NOT NULL,
    start_date    TIMESTAMP WITHOUT TIME ZONE NOT NULL,
    target_date   TIMESTAMP WITHOUT TIME ZONE,
    status        VARCHAR          NOT NULL,
    notes         VARCHAR
);

ALTER TABLE public.goal OWNER TO postgres;
CREATE INDEX ix_goal_user_start_date ON public.goal (user_id, start_date);

CREATE TABLE public.badge
(
    id         SERIAL PRIMARY KEY,
    user_id    INTEGER NOT NULL,
    badge_type VARCHAR NOT NULL,
    awarded_at TIMESTAMP WITHOUT TIME ZONE NOT NULL,
    UNIQUE (user_id, badge_type)
);

ALTER TABLE public.badge OWNER TO postgres;
`
