// Команда token выпускает bearer-токен для пользователя. Секрет и issuer берутся из тех же
// переменных окружения, что и у сервиса.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/procesos/product-directory/internal/auth"
	config "github.com/procesos/product-directory/internal/cfg"
	"github.com/procesos/product-directory/pkg/logger"
)

func main() {
	userID := flag.Int64("user", 0, "id пользователя (subject токена)")
	authorities := flag.String("authorities", "ROLE_USER", "роли через запятую")
	flag.Parse()

	log := logger.NewSlogLogger()

	if *userID <= 0 {
		fmt.Fprintln(os.Stderr, "usage: token -user <id> [-authorities ROLE_USER,ROLE_ADMIN]")
		os.Exit(2)
	}

	jwtCfg, err := config.LoadJWTCfg(log)
	if err != nil {
		log.Errorf(err, "failed to load jwt config")
		os.Exit(1)
	}

	token, err := auth.NewTokenAuthenticator(jwtCfg).Issue(*userID, splitAuthorities(*authorities))
	if err != nil {
		log.Errorf(err, "failed to issue token")
		os.Exit(1)
	}

	fmt.Println(token)
}

func splitAuthorities(raw string) []string {
	var out []string
	for _, a := range strings.Split(raw, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
