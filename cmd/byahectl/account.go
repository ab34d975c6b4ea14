package main

import (
	"context"
	"fmt"
	"io"

	"github.com/maasin/byahenow/internal/api/dto"
	"github.com/spf13/cobra"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a passenger or driver account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")
		plate, _ := cmd.Flags().GetString("plate")
		vehicle, _ := cmd.Flags().GetString("vehicle-type")

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cmd))
		defer cancel()

		profile, err := newClient(cmd).Signup(ctx, dto.SignupRequest{
			Email:       email,
			Password:    password,
			Name:        name,
			Role:        role,
			PlateNumber: plate,
			VehicleType: vehicle,
		})
		if err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}
		return render(cmd, profile, func(w io.Writer) {
			fmt.Fprintf(w, "✓ Account created for %s (%s)\n", profile.Name, profile.Role)
			fmt.Fprintln(w, "Run byahectl login to get a token.")
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print a bearer token",
	Long: `Log in with email and password. The token is printed so it can be
exported, e.g. export BYAHE_TOKEN=$(byahectl login --email ... --password ... -o token).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cmd))
		defer cancel()

		token, profile, err := newClient(cmd).Login(ctx, email, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		if format, _ := cmd.Flags().GetString("output"); format == "token" {
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		}
		return render(cmd, dto.LoginResponse{Token: token, User: profile}, func(w io.Writer) {
			fmt.Fprintf(w, "✓ Logged in as %s (%s)\n", profile.Name, profile.Role)
			fmt.Fprintf(w, "export BYAHE_TOKEN=%s\n", token)
		})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your profile",
}

var profileGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cmd))
		defer cancel()

		profile, err := newClient(cmd).Profile(ctx)
		if err != nil {
			return err
		}
		return render(cmd, profile, func(w io.Writer) { profileTable(w, profile) })
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update your name, plate number or vehicle type",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.UpdateProfileRequest
		if cmd.Flags().Changed("name") {
			v, _ := cmd.Flags().GetString("name")
			req.Name = &v
		}
		if cmd.Flags().Changed("plate") {
			v, _ := cmd.Flags().GetString("plate")
			req.PlateNumber = &v
		}
		if cmd.Flags().Changed("vehicle-type") {
			v, _ := cmd.Flags().GetString("vehicle-type")
			req.VehicleType = &v
		}
		if req.Name == nil && req.PlateNumber == nil && req.VehicleType == nil {
			return fmt.Errorf("nothing to update: pass --name, --plate or --vehicle-type")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cmd))
		defer cancel()

		profile, err := newClient(cmd).UpdateProfile(ctx, req)
		if err != nil {
			return err
		}
		return render(cmd, profile, func(w io.Writer) {
			fmt.Fprintln(w, "✓ Profile updated")
			profileTable(w, profile)
		})
	},
}

func init() {
	signupCmd.Flags().String("email", "", "Email address")
	signupCmd.Flags().String("password", "", "Password (at least 6 characters)")
	signupCmd.Flags().String("name", "", "Display name")
	signupCmd.Flags().String("role", "passenger", "Role: passenger or driver")
	signupCmd.Flags().String("plate", "", "Plate number (drivers)")
	signupCmd.Flags().String("vehicle-type", "", "Vehicle type: tricycle or multicab (drivers)")
	signupCmd.MarkFlagRequired("email")
	signupCmd.MarkFlagRequired("password")
	signupCmd.MarkFlagRequired("name")

	loginCmd.Flags().String("email", "", "Email address")
	loginCmd.Flags().String("password", "", "Password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	profileSetCmd.Flags().String("name", "", "Display name")
	profileSetCmd.Flags().String("plate", "", "Plate number")
	profileSetCmd.Flags().String("vehicle-type", "", "Vehicle type: tricycle or multicab")

	profileCmd.AddCommand(profileGetCmd)
	profileCmd.AddCommand(profileSetCmd)
}
