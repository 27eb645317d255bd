package utils

import (
	"hms/src/config"
	"hms/src/models"
	"hms/src/services"
	"hms/src/types"
	"strings"
	"time"
)

func ParseFecha(value string) (time.Time, error) {
	return time.ParseInLocation(config.DATE_PARSE_FORMAT, strings.TrimSpace(value), time.UTC)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func ToHuespedInput(body *types.HuespedRequestBody) (services.HuespedInput, error) {
	nacimiento, err := ParseFecha(body.FechaNacimiento)
	if err != nil {
		return services.HuespedInput{}, types.NewValidation("fechaNacimiento must use the %s format", config.DATE_PARSE_FORMAT)
	}
	return services.HuespedInput{
		TipoDocumento:   body.TipoDocumento,
		NumeroDocumento: body.NumeroDocumento,
		DatosPersonales: models.DatosPersonales{
			PrimerNombre:      strings.TrimSpace(body.PrimerNombre),
			SegundoNombre:     strings.TrimSpace(body.SegundoNombre),
			PrimerApellido:    strings.TrimSpace(body.PrimerApellido),
			SegundoApellido:   strings.TrimSpace(body.SegundoApellido),
			FechaNacimiento:   nacimiento,
			Nacionalidad:      body.Nacionalidad,
			PaisResidencia:    body.PaisResidencia,
			CiudadResidencia:  body.CiudadResidencia,
			PaisProcedencia:   body.PaisProcedencia,
			CiudadProcedencia: body.CiudadProcedencia,
			Genero:            body.Genero,
			Ocupacion:         body.Ocupacion,
			Telefono:          body.Telefono,
			Correo:            body.Correo,
		},
	}, nil
}

func ToCreateFormularioInput(body *types.CreateFormularioRequestBody) (services.CreateFormularioInput, error) {
	principal, err := ToHuespedInput(&body.Huesped)
	if err != nil {
		return services.CreateFormularioInput{}, err
	}
	in := services.CreateFormularioInput{
		Huesped:         principal,
		MotivoViaje:     body.MotivoViaje,
		MedioTransporte: body.MedioTransporte,
		RegistrarEnTra:  body.RegistrarEnTra,
	}
	for i := range body.Acompanantes {
		acompanante, err := ToHuespedInput(&body.Acompanantes[i])
		if err != nil {
			return services.CreateFormularioInput{}, err
		}
		in.Acompanantes = append(in.Acompanantes, acompanante)
	}
	return in, nil
}
