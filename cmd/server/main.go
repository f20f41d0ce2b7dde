package main

import (
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-pass-system/internal/config"
    "github.com/iliyamo/bus-pass-system/internal/database"
    "github.com/iliyamo/bus-pass-system/internal/handler"
    "github.com/iliyamo/bus-pass-system/internal/mailer"
    "github.com/iliyamo/bus-pass-system/internal/middleware"
    "github.com/iliyamo/bus-pass-system/internal/pass"
    "github.com/iliyamo/bus-pass-system/internal/queue"
    "github.com/iliyamo/bus-pass-system/internal/repository"
    "github.com/iliyamo/bus-pass-system/internal/router"
)

func main() {
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis backs rate limiting and the password reset store.  Both
    // degrade when it is unreachable: limiting is skipped and reset
    // requests fail with a 5xx instead of taking the server down.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable; rate limiting and password reset disabled")
    }

    users := repository.NewUserRepo(db)
    admins := repository.NewAdminRepo(db)
    identities := repository.NewIdentityRepo(db)
    tokens := repository.NewTokenRepo(db)
    passes := repository.NewPassRepo(db)
    resets := repository.NewResetCodeRepo(rdb, time.Duration(cfg.ResetCodeTTLMin)*time.Minute)

    codec := pass.NewCodec(cfg.JWTSecret)
    engine := pass.NewEngine(passes, codec)
    verifier := pass.NewVerifier(passes, codec, users)

    mail := mailer.New(cfg)

    authH := handler.NewAuthHandler(cfg, identities, users, tokens, resets, mail)
    passH := handler.NewPassHandler(engine, passes)
    verifyH := handler.NewVerifyHandler(verifier)
    adminPassH := handler.NewAdminPassHandler(engine, passes)
    adminUserH := handler.NewAdminUserHandler(cfg, users)
    adminAdminH := handler.NewAdminAdminHandler(cfg, admins)

    var rl echo.MiddlewareFunc
    rlCfg := config.LoadRateLimitConfig()
    if rlCfg.Enabled && rdb != nil {
        rl = middleware.NewTokenBucket(rlCfg, rdb)
    }

    e := echo.New()
    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH, cfg.JWTSecret, rl)
    router.RegisterRider(e, passH, cfg.JWTSecret)
    router.RegisterVerify(e, verifyH, rl)
    router.RegisterAdmin(e, adminPassH, adminUserH, adminAdminH, cfg.JWTSecret)

    // Background consumer for pass decision events.
    go func() {
        if err := queue.StartPassConsumer(); err != nil {
            log.Printf("pass-consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
