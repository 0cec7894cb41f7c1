package repository

import (
	"context"
	"fmt"

	"interview-coach/internal/docstore"
	"interview-coach/internal/domain"
)

// userRepository keeps StoredUser documents in the users collection. Emails
// are stored lower-cased so that exact-match queries behave
// case-insensitively.
type userRepository struct {
	users domain.DocumentCollection
}

func NewUserRepository(users domain.DocumentCollection) domain.UserRepository {
	return &userRepository{users: users}
}

func emailQuery(email string) domain.Document {
	return domain.Document{"email": domain.NormalizeEmail(email)}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.StoredUser, error) {
	doc, err := r.users.FindOne(ctx, emailQuery(email))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	var user domain.StoredUser
	if err := docstore.Decode(doc, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.StoredUser) (*domain.StoredUser, error) {
	if user == nil {
		return nil, fmt.Errorf("user is nil")
	}
	toStore := *user
	toStore.ID = ""
	toStore.Email = domain.NormalizeEmail(user.Email)

	doc, err := docstore.Encode(toStore)
	if err != nil {
		return nil, err
	}
	saved, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	var created domain.StoredUser
	if err := docstore.Decode(saved, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// List returns every stored user in registration order.
func (r *userRepository) List(ctx context.Context) ([]domain.StoredUser, error) {
	docs, err := r.users.Find(ctx, domain.Document{})
	if err != nil {
		return nil, err
	}
	users := make([]domain.StoredUser, 0, len(docs))
	for _, doc := range docs {
		var u domain.StoredUser
		if err := docstore.Decode(doc, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, email, passwordHash string) (domain.UpdateResult, error) {
	return r.users.UpdateOne(ctx, emailQuery(email), domain.Document{"password": passwordHash})
}

func (r *userRepository) UpdateProfile(ctx context.Context, email string, name, newEmail string) (domain.UpdateResult, error) {
	return r.users.UpdateOne(ctx, emailQuery(email), domain.Document{
		"name":  name,
		"email": domain.NormalizeEmail(newEmail),
	})
}

func (r *userRepository) UpdateResume(ctx context.Context, email, resumeText string) (domain.UpdateResult, error) {
	return r.users.UpdateOne(ctx, emailQuery(email), domain.Document{"resumeText": resumeText})
}

func (r *userRepository) Delete(ctx context.Context, email string) (int, error) {
	return r.users.DeleteOne(ctx, emailQuery(email))
}
