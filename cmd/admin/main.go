package main

import (
	"context"
	"flag"
	"log"

	"anonboard/internal/domain/user/model"
	"anonboard/internal/domain/user/repository"
	"anonboard/internal/domain/user/service"
	"anonboard/internal/pkg/config"
	"anonboard/pkg/database"
	"anonboard/pkg/logger"
)

// 首个管理员无法通过接口产生，由运维在服务器上执行
func main() {
	promote := flag.String("promote", "", "提升为管理员的用户 ID")
	userType := flag.String("type", "", "修改用户类型（FREE 或 PREMIUM），配合 -user 使用")
	userID := flag.String("user", "", "用户 ID")
	flag.Parse()

	if *promote == "" && (*userType == "" || *userID == "") {
		flag.Usage()
		return
	}

	config.LoadConfig()
	cfg := config.GlobalConfig
	if err := logger.InitLogger(cfg.App.Debug); err != nil {
		log.Fatal(err)
	}
	defer logger.Log.Sync()

	db, err := database.InitDatabase(cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}
	identity := service.NewIdentityService(repository.NewUserRepository(db))
	ctx := context.Background()

	if *promote != "" {
		if err := identity.PromoteToAdmin(ctx, *promote); err != nil {
			log.Fatal(err)
		}
		log.Printf("User %s is now an admin", *promote)
	}
	if *userType != "" {
		if err := identity.UpdateUserType(ctx, *userID, model.UserType(*userType)); err != nil {
			log.Fatal(err)
		}
		log.Printf("User %s is now %s", *userID, *userType)
	}
}
