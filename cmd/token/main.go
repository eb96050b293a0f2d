package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/stockflow-api/pkg/config"
	"github.com/jhoicas/stockflow-api/pkg/jwt"
)

// token emite un Bearer Token firmado con JWT_SECRET para pruebas locales.
// En producción los tokens los emite el servicio de identidad.
func main() {
	user := flag.String("user", "", "id del usuario (sub)")
	company := flag.String("company", "", "id de la empresa (tenant)")
	role := flag.String("role", "admin", "rol: admin, bodeguero, vendedor")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" || *user == "" || *company == "" {
		fmt.Fprintln(os.Stderr, "uso: JWT_SECRET=... token -user U -company C [-role R]")
		os.Exit(1)
	}

	ttl := time.Duration(cfg.JWT.Expiration) * time.Minute
	tok, err := jwt.Generate(cfg.JWT.Secret, jwt.Identity{UserID: *user, CompanyID: *company, Role: *role}, cfg.JWT.Issuer, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "firmar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
