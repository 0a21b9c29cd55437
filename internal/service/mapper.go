package service

import (
	"marketplace-management-api/internal/entity"
)

func mapUser(u *entity.User) *entity.UserOutputModel {
	return &entity.UserOutputModel{
		Id:              u.Id.String(),
		Email:           u.Email,
		Name:            u.Name,
		Role:            u.Role,
		ProfileComplete: u.ProfileComplete,
		CreatedAt:       u.CreatedAt,
	}
}

func mapBusiness(b *entity.BusinessProfile) *entity.BusinessOutputModel {
	return &entity.BusinessOutputModel{
		Id:          b.Id.String(),
		UserId:      b.UserId.String(),
		Name:        b.Name,
		Category:    b.Category,
		Description: b.Description,
		Address:     b.Address,
		Hours:       b.Hours,
		ImageUrl:    b.ImageUrl,
		CreatedAt:   b.CreatedAt,
	}
}

func mapBusinesses(businesses []entity.BusinessProfile) []entity.BusinessOutputModel {
	s := make([]entity.BusinessOutputModel, 0)
	for _, b := range businesses {
		s = append(s, *mapBusiness(&b))
	}

	return s
}

func mapJob(j *entity.Job) *entity.JobOutputModel {
	return &entity.JobOutputModel{
		Id:          j.Id.String(),
		UserId:      j.UserId.String(),
		Title:       j.Title,
		Description: j.Description,
		Budget:      j.Budget,
		Category:    j.Category,
		Location:    j.Location,
		Status:      j.Status,
		CreatedAt:   j.CreatedAt,
	}
}

func mapBid(b *entity.Bid) *entity.BidOutputModel {
	return &entity.BidOutputModel{
		Id:         b.Id.String(),
		JobId:      b.JobId.String(),
		BusinessId: b.BusinessId.String(),
		Amount:     b.Amount,
		Proposal:   b.Proposal,
		Status:     b.Status,
		CreatedAt:  b.CreatedAt,
	}
}

func mapBids(bids []entity.Bid) []entity.BidOutputModel {
	s := make([]entity.BidOutputModel, 0)
	for _, b := range bids {
		s = append(s, *mapBid(&b))
	}

	return s
}

func mapMessage(m *entity.Message) *entity.MessageOutputModel {
	return &entity.MessageOutputModel{
		Id:         m.Id.String(),
		SenderId:   m.SenderId.String(),
		ReceiverId: m.ReceiverId.String(),
		Content:    m.Content,
		Read:       m.Read,
		CreatedAt:  m.CreatedAt,
	}
}
