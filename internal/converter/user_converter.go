package converter

import (
	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(user.Role),
		Phone:     user.Phone,
		Specialty: user.Specialty,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// DoctorToResponse converts a doctor User entity to DoctorResponse DTO
func DoctorToResponse(user *entity.User) *dto.DoctorResponse {
	if user == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Phone:     user.Phone,
		Specialty: user.Specialty,
	}
}

// DoctorsToResponses converts a slice of doctor entities to DoctorResponse DTOs
func DoctorsToResponses(users []entity.User) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(users))
	for i := range users {
		responses[i] = *DoctorToResponse(&users[i])
	}
	return responses
}
